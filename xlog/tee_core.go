package xlog

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (xLogMultiCore)(nil)

// xLogMultiCore fans an entry out to every member core. The member
// accessors are not meaningful for a group, so they are all nil.
type xLogMultiCore []xLogCore

func (mc xLogMultiCore) context() context.Context                                    { return nil }
func (mc xLogMultiCore) levelEncoder() zapcore.LevelEncoder                          { return nil }
func (mc xLogMultiCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder { return nil }
func (mc xLogMultiCore) timeEncoder() zapcore.TimeEncoder                            { return nil }
func (mc xLogMultiCore) writeSyncer() zapcore.WriteSyncer                            { return nil }

// With stays a multi core as long as every member does, so the child
// loggers are still able to be re-encoded by WrapCores.
func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	members := make([]zapcore.Core, 0, len(mc))
	clone := make(xLogMultiCore, 0, len(mc))
	for _, core := range mc {
		child := core.With(fields)
		members = append(members, child)
		if xc, ok := child.(xLogCore); ok {
			clone = append(clone, xc)
		}
	}
	if len(clone) != len(members) {
		return zapcore.NewTee(members...)
	}
	return clone
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	for _, core := range mc {
		if core.Enabled(lvl) {
			return true
		}
	}
	return false
}

// Check lets each member add itself, the disabled ones are skipped.
func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, core := range mc {
		if !core.Enabled(ent.Level) {
			continue
		}
		ce = core.Check(ent, ce)
	}
	return ce
}

func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	var err error
	for _, core := range mc {
		err = multierr.Append(err, core.Write(ent, fields))
	}
	return err
}

func (mc xLogMultiCore) Sync() error {
	var err error
	for _, core := range mc {
		err = multierr.Append(err, core.Sync())
	}
	return err
}

// XLogTeeCore groups the cores, the nil ones (rejected by their
// constructors) are dropped.
func XLogTeeCore(cores ...xLogCore) xLogCore {
	members := make(xLogMultiCore, 0, len(cores))
	for _, core := range cores {
		if core == nil {
			continue
		}
		members = append(members, core)
	}
	return members
}

// WrapCores re-encodes every member with cfg, see WrapCore.
func WrapCores(cores []xLogCore, cfg zapcore.EncoderConfig) (xLogCore, error) {
	wrapped := make(xLogMultiCore, 0, len(cores))
	for _, core := range cores {
		if core == nil {
			continue
		}
		wc, err := WrapCore(core, cfg)
		if err != nil {
			return nil, err
		}
		wrapped = append(wrapped, wc)
	}
	return wrapped, nil
}

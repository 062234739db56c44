package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/benz9527/xrbtree/observability"
	"github.com/benz9527/xrbtree/xlog"
)

const appName = "xrbtree"

type rootOptions struct {
	color    bool
	metrics  string
	logLevel string
}

// demoEnv is shared by all demos of a single run.
type demoEnv struct {
	ctx     context.Context
	out     io.Writer
	printer *treePrinter
	logger  xlog.XLogger
	meter   metric.Meter
}

type demoFunc func(env *demoEnv) error

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Intrusive red-black ordered map demos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.color, "color", !color.NoColor, "print red and black nodes in ANSI colors")
	rootCmd.PersistentFlags().StringVar(&opts.metrics, "metrics", string(observability.NoneMetricsExporter), "metrics exporter, none|stdout|prometheus")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "log level, DEBUG|INFO|WARN|ERROR (XLOG_LVL if unset)")

	rootCmd.AddCommand(
		stringsCmd(opts),
		intsCmd(opts),
		recordsCmd(opts),
		randomCmd(opts),
	)
	return rootCmd
}

func resolveLogLevel(cmd *cobra.Command, opts *rootOptions) string {
	if f := cmd.Flags().Lookup("log-level"); f != nil && !f.Changed {
		if lvl := os.Getenv("XLOG_LVL"); len(lvl) > 0 {
			return lvl
		}
	}
	return opts.logLevel
}

func runDemo(cmd *cobra.Command, opts *rootOptions, name string, demo demoFunc) error {
	typ, err := observability.ParseMetricsExporterType(opts.metrics)
	if err != nil {
		return fmt.Errorf("%w: %q", err, opts.metrics)
	}

	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerEncoder(xlog.PlainText),
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(resolveLogLevel(cmd, opts))),
	).Named(appName)
	defer func() {
		_ = logger.Sync()
	}()

	if undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		logger.Warn("unable to set GOMAXPROCS")
	} else {
		defer undo()
	}

	out := cmd.OutOrStdout()
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Provide(
			func() xlog.XLogger {
				return logger
			},
			func(lc fx.Lifecycle) (metric.MeterProvider, error) {
				mp, err := observability.NewMeterProvider(typ, out)
				if err != nil {
					return nil, err
				}
				if mp == nil {
					return noop.NewMeterProvider(), nil
				}
				lc.Append(fx.StopHook(mp.Shutdown))
				return mp, nil
			},
			func() *treePrinter {
				return newTreePrinter(out, opts.color)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, mp metric.MeterProvider, printer *treePrinter, appLogger xlog.XLogger) {
			lc.Append(fx.StartHook(func(ctx context.Context) error {
				if err := observability.InitAppStats(ctx, mp, name, nil); err != nil {
					return err
				}
				return demo(&demoEnv{
					ctx:     ctx,
					out:     out,
					printer: printer,
					logger:  appLogger.Named(name),
					meter:   mp.Meter(appName + "/" + name),
				})
			}))
		}),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}

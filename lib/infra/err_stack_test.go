package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, tc.Frame))
	}

	verbose := fmt.Sprintf("%+v", initPC)
	require.True(t, strings.HasPrefix(verbose, "github.com/benz9527/xrbtree/lib/infra.init\n\t"))
	require.Contains(t, verbose, "err_stack_test.go:")
	require.Equal(t, "err_stack_test.go:"+fmt.Sprintf("%d", initPC), fmt.Sprintf("%v", initPC))
}

func TestFrameMarshalText(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xrbtree/lib/infra.init "))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

var errTestSentinel = errors.New("[infra] sentinel")

func TestWrapErrorStack(t *testing.T) {
	require.Nil(t, WrapErrorStack(nil))

	es := WrapErrorStack(errTestSentinel)
	require.ErrorIs(t, es, errTestSentinel)
	require.Equal(t, errTestSentinel.Error(), es.Error())
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestWrapErrorStack", fmt.Sprintf("%n", es.Frames()[0]))

	// Wrapping twice keeps the first frames.
	again := WrapErrorStack(fmt.Errorf("outer: %w", es))
	require.Same(t, es, again)
}

func TestNewErrorStackMarshalLogObject(t *testing.T) {
	es := NewErrorStack("[infra] broken")
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "[infra] broken", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.Len(t, frames, len(es.Frames()))
	require.Contains(t, frames[0], "TestNewErrorStackMarshalLogObject")
}

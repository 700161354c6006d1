package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		level string
		json  bool
		want  zapcore.Level
	}{
		{level: "", want: zapcore.InfoLevel},
		{level: "debug", want: zapcore.DebugLevel},
		{level: "WARN", json: true, want: zapcore.WarnLevel},
	}
	for _, tc := range cases {
		logger, err := New(tc.level, tc.json)
		require.NoError(t, err)
		require.True(t, logger.Core().Enabled(tc.want))
		if tc.want > zapcore.DebugLevel {
			require.False(t, logger.Core().Enabled(tc.want-1))
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", false)
	require.Error(t, err)
}

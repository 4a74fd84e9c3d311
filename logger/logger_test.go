package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewZapLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"info", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"bogus", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}

	for _, test := range tests {
		t.Run(test.level, func(t *testing.T) {
			l, err := NewZapLogger("dev", test.level)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(test.want.Level()))
			if test.want.Level() > zap.DebugLevel {
				assert.False(t, l.Core().Enabled(test.want.Level()-1))
			}
		})
	}
}

func TestNewZapLogger_Prod(t *testing.T) {
	l, err := NewZapLogger("prod", "info")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

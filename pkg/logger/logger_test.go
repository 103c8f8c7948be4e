package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Envs(t *testing.T) {
	for _, env := range []string{"dev", "prod", "staging"} {
		t.Run(env, func(t *testing.T) {
			log, err := NewLogger(env)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewLogger_ProdSkipsDebug(t *testing.T) {
	log, err := NewLogger("prod")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

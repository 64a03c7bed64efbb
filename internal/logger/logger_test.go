package logger

import (
	"path/filepath"
	"testing"

	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestSetup_WithFileSink(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	file := filepath.Join(t.TempDir(), "chatbot.log")
	closer, err := Setup(config.LoggingConfig{Level: "debug", Format: "json", File: file}, true)
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("logger ready")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

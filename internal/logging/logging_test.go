package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	require.Equal(t, zerolog.Disabled, ParseLevel("off"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestSetupJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setup(&buf, "PROD", "info")
	log.Info().Str("component", "session").Msg("hydrated")
	log.Debug().Msg("dropped")

	out := buf.String()
	require.Contains(t, out, `"component":"session"`)
	require.Contains(t, out, `"message":"hydrated"`)
	require.NotContains(t, out, "dropped")
}

package timezone

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func unsetLocation(t *testing.T) {
	t.Helper()

	mu.Lock()
	saved := appLocation
	appLocation = nil
	mu.Unlock()

	warned := fallbackWarned.Load()
	fallbackWarned.Store(false)

	t.Cleanup(func() {
		mu.Lock()
		appLocation = saved
		mu.Unlock()

		fallbackWarned.Store(warned)
	})
}

func TestFallbackWarningWithTimestampHook(t *testing.T) {
	unsetLocation(t)

	savedLogger, savedFunc := log.Logger, zerolog.TimestampFunc
	t.Cleanup(func() {
		log.Logger = savedLogger
		zerolog.TimestampFunc = savedFunc
	})

	var buf bytes.Buffer
	zerolog.TimestampFunc = Now
	log.Logger = zerolog.New(&buf).With().Timestamp().Logger()

	log.Info().Msg("first")
	log.Info().Msg("second")

	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Equal(t, 1, strings.Count(out, "Timezone not initialized"))
}

func TestCurrentBeforeSetDefault(t *testing.T) {
	unsetLocation(t)

	assert.Same(t, time.UTC, Current())
	assert.False(t, fallbackWarned.Load())
}

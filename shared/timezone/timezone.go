package timezone

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	// Embedded IANA database; hosts without /usr/share/zoneinfo still resolve names.
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

var (
	mu          sync.RWMutex
	appLocation *time.Location

	fallbackWarned atomic.Bool
)

// Resolve looks up an IANA timezone name without touching any global state.
func Resolve(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty timezone name", ErrUnknownTimezone)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownTimezone, name, err)
	}

	return loc, nil
}

// SetDefault makes name the process default timezone (time.Local) and the
// application timezone used by the helpers in this package.
// On failure nothing is changed.
func SetDefault(name string) (*time.Location, error) {
	loc, err := Resolve(name)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	time.Local = loc
	appLocation = loc
	mu.Unlock()

	return loc, nil
}

func location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()

	return appLocation
}

// warnFallback reports the UTC fallback once per process. A logger whose
// timestamp hook calls back into this package does not recurse.
func warnFallback() {
	if fallbackWarned.CompareAndSwap(false, true) {
		log.Warn().Msg("Timezone not initialized, using UTC")
	}
}

// Current returns the application timezone, or UTC before SetDefault.
// It never logs, so it is safe to call from logging hooks.
func Current() *time.Location {
	if loc := location(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now returns the current time in the application timezone
func Now() time.Time {
	loc := location()
	if loc == nil {
		warnFallback()
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	loc := location()
	if loc == nil {
		warnFallback()
		return t.UTC()
	}
	return t.In(loc)
}

// GetLocation returns the current application timezone location
func GetLocation() *time.Location {
	loc := location()
	if loc == nil {
		warnFallback()
		return time.UTC
	}
	return loc
}

// Parse parses a time string in the application timezone
func Parse(layout, value string) (time.Time, error) {
	loc := location()
	if loc == nil {
		warnFallback()
		return time.Parse(layout, value)
	}
	return time.ParseInLocation(layout, value, loc)
}

// Format formats a time in the application timezone
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

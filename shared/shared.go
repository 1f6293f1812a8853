package shared

import (
	"strings"
)

const cacheKeySeparator = ":"

// BuildCacheKey joins the non-empty parts into a namespaced cache key.
func BuildCacheKey(parts ...string) string {
	kept := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kept = append(kept, strings.ReplaceAll(part, cacheKeySeparator, "_"))
	}

	return strings.Join(kept, cacheKeySeparator)
}

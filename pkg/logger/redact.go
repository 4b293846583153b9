package logger

import (
	"net/url"
	"strings"
)

// Parameter query yang nilainya tidak boleh masuk log.
var sensitiveParams = []string{"password"}

const redacted = "REDACTED"

// RedactURL mengganti nilai parameter sensitif pada path?query sebelum
// dicatat. Query yang tidak bisa di-parse dibuang seluruhnya.
func RedactURL(rawURL string) string {
	path, rawQuery, found := strings.Cut(rawURL, "?")
	if !found || rawQuery == "" {
		return rawURL
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path
	}
	changed := false
	for _, key := range sensitiveParams {
		if query.Has(key) {
			query.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	return path + "?" + query.Encode()
}

package integrations

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/mavenclosure/pkg/cache"
)

// DefaultTimeout bounds a single repository request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a document doesn't exist in the repository.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for transport failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with the given per-request timeout.
// A zero timeout uses [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// IsLocal reports whether base refers to a directory on disk rather than an
// HTTP(S) server. Both plain paths and file:// URLs are local.
func IsLocal(base string) bool {
	if strings.HasPrefix(base, "file://") {
		return true
	}
	u, err := url.Parse(base)
	if err != nil {
		return true
	}
	// Windows drive letters parse as a one-letter scheme.
	return u.Scheme == "" || len(u.Scheme) == 1
}

// LocalPath converts a local base location to a filesystem path.
func LocalPath(base string) string {
	if strings.HasPrefix(base, "file://") {
		if u, err := url.Parse(base); err == nil {
			return filepath.FromSlash(u.Path)
		}
		return filepath.FromSlash(strings.TrimPrefix(base, "file://"))
	}
	return base
}

// JoinURL appends slash-separated path elements to base.
// Elements are escaped; base is used as given apart from a trailing slash.
func JoinURL(base string, elems ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, e := range elems {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(e))
	}
	return b.String()
}

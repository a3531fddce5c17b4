package cli

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenclosure/pkg/observability"
)

// logHooks turns library events into debug log lines and spinner updates.
type logHooks struct {
	logger  *log.Logger
	fetched atomic.Int64
	spinner atomic.Pointer[Spinner]
}

// installHooks registers logging hooks for the lifetime of one command.
// The returned function restores the defaults.
func installHooks(l *log.Logger) (*logHooks, func()) {
	h := &logHooks{logger: l}
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return h, observability.Reset
}

// track attaches s so fetch counts are shown while a root resolves.
// Pass nil to detach.
func (h *logHooks) track(s *Spinner) {
	h.fetched.Store(0)
	h.spinner.Store(s)
}

func (h *logHooks) OnResolveStart(_ context.Context, root string) {
	h.logger.Debug("resolve start", "root", root)
}

func (h *logHooks) OnResolveComplete(_ context.Context, root string, artifacts int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "root", root, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("resolve done", "root", root, "artifacts", artifacts, "elapsed", d.Round(time.Millisecond))
}

func (h *logHooks) OnDescriptorFetched(_ context.Context, coord string, d time.Duration, err error) {
	n := h.fetched.Add(1)
	if s := h.spinner.Load(); s != nil {
		s.SetMessage("Resolving (%d descriptors)", n)
	}
	if err != nil {
		h.logger.Debug("descriptor", "coord", coord, "err", err)
		return
	}
	h.logger.Debug("descriptor", "coord", coord, "elapsed", d.Round(time.Millisecond))
}

func (h *logHooks) OnConflict(_ context.Context, key, winner string, losers []string) {
	h.logger.Debug("conflict", "artifact", key, "selected", winner, "omitted", strings.Join(losers, ","))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/matzehuels/mavenclosure/pkg/artifact"
	"github.com/matzehuels/mavenclosure/pkg/cache"
	"github.com/matzehuels/mavenclosure/pkg/errors"
	"github.com/matzehuels/mavenclosure/pkg/integrations/maven"
	"github.com/matzehuels/mavenclosure/pkg/render"
	"github.com/matzehuels/mavenclosure/pkg/resolve"
	"github.com/matzehuels/mavenclosure/pkg/version"
)

// formatAPI selects the ResolveResponse JSON body. It is never a valid
// render format, so it cannot collide with one in result cache keys.
const formatAPI = "api+json"

// CacheHeader reports whether a response came from the result cache.
const CacheHeader = "X-Cache"

// ResolveResponse is the JSON body of a successful resolution.
type ResolveResponse struct {
	Root      string             `json:"root"`
	Artifacts []ArtifactResponse `json:"artifacts"`
	Conflicts []ConflictResponse `json:"conflicts,omitempty"`
}

// ArtifactResponse is one member of the closure.
type ArtifactResponse struct {
	Coordinate string `json:"coordinate"`
	Group      string `json:"group"`
	Artifact   string `json:"artifact"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Type       string `json:"type,omitempty"`
	Scope      string `json:"scope"`
	Depth      int    `json:"depth"`
	Via        string `json:"via"`
}

// ConflictResponse lists the versions that lost mediation for an artifact.
type ConflictResponse struct {
	Artifact string   `json:"artifact"`
	Selected string   `json:"selected"`
	Omitted  []string `json:"omitted"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// resolveRequest is a validated /v1/resolve query.
type resolveRequest struct {
	root        artifact.Coordinate
	constraints resolve.Constraints
	exclude     []string
	optional    []string
	format      string
}

// rendered is a response body with its media type.
type rendered struct {
	body        []byte
	contentType string
	cacheable   bool
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseResolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := s.opts.Keyer.ResultKey(req.root.String(), cache.ResultKeyOpts{
		Repository: s.opts.Repository,
		Exclude:    req.exclude,
		Optional:   req.optional,
		Format:     req.format,
	})

	if data, hit, err := s.opts.Results.Get(r.Context(), key); err == nil && hit {
		w.Header().Set("Content-Type", contentType(req.format))
		w.Header().Set(CacheHeader, "HIT")
		_, _ = w.Write(data)
		return
	}

	// The flight outlives any one waiter; each waiter gives up on its own.
	flight := s.flights.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.opts.ResolveTimeout)
		defer cancel()
		return s.resolve(ctx, req)
	})
	var out *rendered
	select {
	case <-r.Context().Done():
		s.opts.Logger.Debug("client gone", "id", RequestIDFromContext(r.Context()), "err", r.Context().Err())
		return
	case res := <-flight:
		if res.Err != nil {
			s.writeError(w, r, res.Err)
			return
		}
		out = res.Val.(*rendered)
	}

	if out.cacheable {
		if err := s.opts.Results.Set(r.Context(), key, out.body, s.opts.ResultTTL); err != nil {
			s.opts.Logger.Warn("result cache write failed", "err", err)
		}
	}
	w.Header().Set("Content-Type", out.contentType)
	w.Header().Set(CacheHeader, "MISS")
	_, _ = w.Write(out.body)
}

func (s *Server) parseResolve(r *http.Request) (*resolveRequest, error) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("artifact"))
	if raw == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing artifact parameter")
	}
	root, err := artifact.ParseRoot(raw)
	if err != nil {
		return nil, err
	}

	req := &resolveRequest{
		root:     root,
		exclude:  append(slices.Clone(s.opts.Exclude), queryList(r, "exclude")...),
		optional: append(slices.Clone(s.opts.Optional), queryList(r, "optional")...),
	}
	if req.constraints, err = resolve.NewConstraints(req.exclude, req.optional); err != nil {
		return nil, err
	}

	f, err := render.ParseFormat(q.Get("format"))
	if err != nil {
		return nil, err
	}
	req.format = string(f)
	if q.Get("format") == "" && acceptsJSON(r) {
		req.format = formatAPI
	}
	return req, nil
}

func (s *Server) resolve(ctx context.Context, req *resolveRequest) (*rendered, error) {
	fetcher := maven.NewFetcher(s.opts.Client, s.opts.Repository)
	res, err := resolve.New(fetcher, resolve.Options{Workers: s.opts.Workers}).
		Resolve(ctx, req.root, req.constraints)
	if err != nil {
		return nil, err
	}

	out := &rendered{contentType: contentType(req.format), cacheable: !hasSnapshots(res)}
	if req.format == formatAPI {
		out.body, err = json.Marshal(newResolveResponse(res))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode result")
		}
		return out, nil
	}

	var buf bytes.Buffer
	if err := render.Render(ctx, &buf, res, render.Format(req.format)); err != nil {
		return nil, err
	}
	out.body = buf.Bytes()
	return out, nil
}

func newResolveResponse(res *resolve.Result) ResolveResponse {
	out := ResolveResponse{
		Root:      res.Root.String(),
		Artifacts: make([]ArtifactResponse, 0, len(res.Artifacts)),
	}
	for _, a := range res.Artifacts {
		out.Artifacts = append(out.Artifacts, ArtifactResponse{
			Coordinate: a.Coordinate.String(),
			Group:      a.Group,
			Artifact:   a.Artifact,
			Version:    a.Version,
			Classifier: a.Classifier,
			Type:       a.Type,
			Scope:      string(a.Scope),
			Depth:      a.Depth,
			Via:        a.Via.String(),
		})
	}
	for _, c := range res.Conflicts {
		out.Conflicts = append(out.Conflicts, ConflictResponse{
			Artifact: c.Key.String(),
			Selected: c.Winner,
			Omitted:  c.Losers,
		})
	}
	return out
}

// hasSnapshots reports whether the result depends on mutable versions.
func hasSnapshots(res *resolve.Result) bool {
	if version.IsSnapshot(res.Root.Version) {
		return true
	}
	for _, a := range res.Artifacts {
		if version.IsSnapshot(a.Version) {
			return true
		}
	}
	return false
}

func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func contentType(format string) string {
	if format == formatAPI {
		return "application/json"
	}
	return render.Format(format).ContentType()
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.IsRequestError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeNetwork), errors.Is(err, errors.ErrCodeMalformedDescriptor):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := ErrorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: RequestIDFromContext(r.Context()),
	}
	if status == http.StatusInternalServerError {
		s.opts.Logger.Error("resolve failed", "id", body.RequestID, "err", err)
	}

	if acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body.Error + "\n"))
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sugiyama/pkg/buildinfo"
	"github.com/matzehuels/sugiyama/pkg/cache"
	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/observability"
	"github.com/matzehuels/sugiyama/pkg/options"
	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// LayoutRequest is the body of /v1/layout and /v1/debug/{phase}.
type LayoutRequest struct {
	Graph   *graph.Node      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// BatchRequest is the body of /v1/layout/batch.
type BatchRequest struct {
	Graphs  []*graph.Node    `json:"graphs"`
	Options pipeline.Options `json:"options"`
}

// BatchItem is one entry of a batch response, in request order.
type BatchItem struct {
	Result *pipeline.Result `json:"result,omitempty"`
	Error  *ErrorBody       `json:"error,omitempty"`
}

// ErrorBody is the JSON form of a failed request.
type ErrorBody struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// OptionInfo describes one layout option for /v1/options.
type OptionInfo struct {
	ID      string   `json:"id"`
	Scope   string   `json:"scope"`
	Default string   `json:"default,omitempty"`
	Values  []string `json:"values,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"uptime":  time.Since(s.startTime).String(),
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	all := options.All()
	out := make([]OptionInfo, len(all))
	for i, d := range all {
		out[i] = OptionInfo{ID: d.ID, Scope: string(d.Scope), Default: d.Default, Values: d.Values}
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": out})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	body, ok := s.decode(w, r, &req)
	if !ok {
		return
	}
	req.Options.Logger = s.logger.With("request", RequestID(r.Context()))

	// Identical bodies share one run. The run is detached from the first
	// caller so its disconnect does not cancel the others; the timeout
	// option still bounds it.
	v, err, shared := s.group.Do(cache.Hash(body), func() (any, error) {
		return s.runner.Layout(context.WithoutCancel(r.Context()), req.Graph, req.Options)
	})
	if shared {
		s.logger.Debug("joined running layout", "request", RequestID(r.Context()))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if _, ok := s.decode(w, r, &req); !ok {
		return
	}
	if len(req.Graphs) == 0 {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "no graphs")
		return
	}
	req.Options.Logger = s.logger.With("request", RequestID(r.Context()))

	results, errs := s.runner.Batch(r.Context(), req.Graphs, req.Options)
	items := make([]BatchItem, len(results))
	for i := range results {
		if errs[i] != nil {
			items[i].Error = errorBody(errs[i])
			continue
		}
		items[i].Result = results[i]
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	phase := chi.URLParam(r, "phase")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}

	var req LayoutRequest
	if _, ok := s.decode(w, r, &req); !ok {
		return
	}
	req.Options.Logger = s.logger.With("request", RequestID(r.Context()))

	data, err := s.runner.Debug(r.Context(), req.Graph, req.Options, phase, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads a size-limited JSON body into v and returns the raw bytes.
// On failure it writes the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput), err.Error())
		return nil, false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidFormat), "invalid request body: "+err.Error())
		return nil, false
	}
	return body, true
}

// fail writes err with the status its code maps to. Server-side failures
// are reported to the HTTP hooks and logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.HTTP().OnError(r.Context(), r.Method, route, err)
		s.logger.Error("request failed", "request", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody(err))
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfiguration, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) *ErrorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return &ErrorBody{Code: string(code), Message: errors.UserMessage(err)}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message})
}

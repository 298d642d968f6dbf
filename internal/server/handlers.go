package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/observability"
	"github.com/matzehuels/polarcoaster/pkg/pipeline"
	"github.com/matzehuels/polarcoaster/pkg/scene"
	"github.com/matzehuels/polarcoaster/pkg/session"
)

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

// frameResponse is one animation frame as seen by a viewer.
type frameResponse struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	Progress float64 `json:"progress"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Hover    int     `json:"hover"`
	Text     string  `json:"text"`
}

func newFrameResponse(f scene.Frame) frameResponse {
	return frameResponse{
		From:     f.From,
		To:       f.To,
		Progress: f.Progress,
		X:        f.Cart.X,
		Y:        f.Cart.Y,
		Hover:    f.Hover,
		Text:     f.Text,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}

	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	s.writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.KindInput:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindCapacity:
		return http.StatusTooManyRequests
	case errors.KindUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Static routes
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"nodes":    s.layout.Len(),
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	data, err := scene.MarshalLayout(s.layout)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r, pipeline.VizTypeCoaster, pipeline.FormatSVG)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render(w, r, opts, "image/svg+xml")
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r, pipeline.VizTypeNodelink, pipeline.FormatDOT)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.render(w, r, opts, "text/vnd.graphviz")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options, contentType string) {
	artifacts, err := s.runner.RenderArtifacts(r.Context(), s.layout, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(artifacts[opts.Formats[0]])
}

// renderOptions refines the base options with the at, text, labels and
// detailed query parameters.
func (s *Server) renderOptions(r *http.Request, vizType, format string) (pipeline.Options, error) {
	opts := s.opts
	opts.VizType = vizType
	opts.Formats = []string{format}

	q := r.URL.Query()
	if v := q.Get("at"); v != "" {
		at, err := time.ParseDuration(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid at %q", v)
		}
		opts.ShowCart = true
		opts.At = at
	}
	for name, dst := range map[string]*bool{"text": &opts.Text, "labels": &opts.Labels, "detailed": &opts.Detailed} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create(r.Context(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	observability.Server().OnSessions(r.Context(), s.store.Len())
	w.Header().Set("Location", "/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	pointer, err := parsePointer(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := s.now()
	var frame scene.Frame
	err = s.store.Update(r.Context(), id, now, func(sess *session.Session) error {
		sess.State = s.animator.Sample(sess.State, sess.Elapsed(now))
		frame = s.layout.Frame(sess.State, pointer)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newFrameResponse(frame))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	now := s.now()
	err = s.store.Update(r.Context(), id, now, func(sess *session.Session) error {
		sess.State = s.animator.Reset(sess.State)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	observability.Server().OnSessions(r.Context(), s.store.Len())
	w.WriteHeader(http.StatusNoContent)
}

func sessionID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSessionID(id); err != nil {
		return "", err
	}
	return id, nil
}

// parsePointer reads the optional x and y query parameters. Both or neither
// must be given.
func parsePointer(r *http.Request) (*geom.Point, error) {
	q := r.URL.Query()
	xs, ys := q.Get("x"), q.Get("y")
	if xs == "" && ys == "" {
		return nil, nil
	}
	if xs == "" || ys == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pointer needs both x and y")
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid y %q", ys)
	}
	p := geom.Pt(x, y)
	return &p, nil
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handsoff/internal/session"
)

// SessionController is the part of session.Session the API drives.
type SessionController interface {
	Status() session.Status
	Do(ctx context.Context, action session.Action) error
}

// SessionHandler exposes the session state and its commands.
//
//	GET    /api/session
//	POST   /api/session/train/not-touched
//	POST   /api/session/train/touched
//	POST   /api/session/detect
//	DELETE /api/session/detect
type SessionHandler struct {
	ctx     context.Context
	session SessionController
}

// NewSessionHandler creates a SessionHandler. Commands run under ctx rather
// than the request context because they outlive the request.
func NewSessionHandler(ctx context.Context, s SessionController) *SessionHandler {
	return &SessionHandler{ctx: ctx, session: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.session.Status())
	case "train/not-touched":
		h.command(w, r, http.MethodPost, session.ActionTrainA)
	case "train/touched":
		h.command(w, r, http.MethodPost, session.ActionTrainB)
	case "detect":
		switch r.Method {
		case http.MethodPost:
			h.command(w, r, http.MethodPost, session.ActionDetect)
		case http.MethodDelete:
			h.command(w, r, http.MethodDelete, session.ActionStop)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

// command runs action and answers 202 with the new status, or 409 when the
// current phase does not allow it.
func (h *SessionHandler) command(w http.ResponseWriter, r *http.Request, method string, action session.Action) {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.session.Do(h.ctx, action); err != nil {
		if errors.Is(err, session.ErrActionDisabled) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, h.session.Status())
}

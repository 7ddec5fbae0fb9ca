package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notivo/middleware"
	"notivo/search"
	"notivo/store"
)

// Notes serves the note CRUD routes. Every route runs behind RequireAuth;
// a userId supplied by the client must match the token subject.
type Notes struct {
	notes *store.Notes
}

func NewNotes(notes *store.Notes) *Notes {
	return &Notes{notes: notes}
}

// List returns the caller's notes, pinned first then newest first. The
// optional q parameter applies the substring filter on top of the ordered
// listing without re-sorting it.
func (h *Notes) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorizedUserID(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	notes, err := h.notes.List(r.Context(), userID)
	if err != nil {
		slog.Error("listing notes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, search.Filter(notes, r.URL.Query().Get("q")))
}

func (h *Notes) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  int    `json:"userId"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if req.UserID != 0 && req.UserID != userID {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	note, err := h.notes.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		slog.Error("creating note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// Update overwrites title and content. A missing id reports success without
// changing anything; the client cannot tell the two apart.
func (h *Notes) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := h.notes.Update(r.Context(), id, req.Title, req.Content); err != nil {
		slog.Error("updating note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeSuccess(w)
}

// Pin toggles the pin flag. The note's updated_at is left untouched.
func (h *Notes) Pin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsPinned bool `json:"is_pinned"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := h.notes.SetPinned(r.Context(), id, req.IsPinned); err != nil {
		slog.Error("pinning note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeSuccess(w)
}

// Delete removes the note. Idempotent: a second delete of the same id also
// reports success.
func (h *Notes) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := h.notes.Delete(r.Context(), id); err != nil {
		slog.Error("deleting note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeSuccess(w)
}

// authorizedUserID resolves the effective user id: the token subject, checked
// against a client-supplied id when one is present. Writes the error response
// itself and returns ok=false on failure.
func authorizedUserID(w http.ResponseWriter, r *http.Request, supplied string) (int, bool) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	if supplied != "" {
		id, err := strconv.Atoi(supplied)
		if err != nil || id != userID {
			writeError(w, http.StatusForbidden, "Forbidden")
			return 0, false
		}
	}
	return userID, true
}

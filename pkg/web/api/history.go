package api

import (
	"errors"
	"net/http"

	"webeng-hq/hello/pkg/users"
	"webeng-hq/hello/pkg/web/types"
)

func (h *Handler) allHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.greetings.AllHistory(r.Context())
	if err != nil {
		h.internalError(r.Context(), w, "history", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, entries)
}

func (h *Handler) userHistory(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	entries, err := h.greetings.History(r.Context(), username)
	if errors.Is(err, users.ErrUserNotFound) {
		h.writeError(r.Context(), w, types.NewNotFoundError("user not found: "+username, "username"))
		return
	}
	if err != nil {
		h.internalError(r.Context(), w, "history", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, entries)
}

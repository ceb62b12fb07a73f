package api

import (
	"errors"
	"net/http"

	"webeng-hq/hello/pkg/users"
	"webeng-hq/hello/pkg/web/types"
)

// maxFormBytes bounds the form body of the user endpoints.
const maxFormBytes = 64 << 10

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.writeError(r.Context(), w, types.NewInvalidRequestError("invalid form body", "", types.CodeInvalidValue))
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	for _, f := range []struct{ name, value string }{
		{"username", username},
		{"password", password},
		{"role", r.FormValue("role")},
	} {
		if f.value == "" {
			h.writeError(r.Context(), w, types.NewInvalidRequestError(f.name+" is required", f.name, types.CodeMissingField))
			return
		}
	}

	role, err := users.ParseRole(r.FormValue("role"))
	if err != nil {
		h.writeError(r.Context(), w, types.NewInvalidRequestError("role must be ADMIN or USER", "role", types.CodeInvalidValue))
		return
	}

	u, err := h.users.Create(r.Context(), username, password, role)
	switch {
	case errors.Is(err, users.ErrUserExists):
		h.writeError(r.Context(), w, types.NewConflictError("username already taken: "+username, "username"))
		return
	case errors.Is(err, users.ErrInvalidInput):
		h.writeError(r.Context(), w, types.NewInvalidRequestError(err.Error(), "username", types.CodeMissingField))
		return
	case err != nil:
		h.internalError(r.Context(), w, "create user", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.writeError(r.Context(), w, types.NewInvalidRequestError("invalid form body", "", types.CodeInvalidValue))
		return
	}

	ok, err := h.users.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.internalError(r.Context(), w, "login", err)
		return
	}
	if !ok {
		h.writeError(r.Context(), w, types.NewAuthenticationError("Invalid username or password"))
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, types.MessageResponse{Message: "Login successful"})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.internalError(r.Context(), w, "list users", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, list)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	u, err := h.users.Get(r.Context(), username)
	if errors.Is(err, users.ErrUserNotFound) {
		h.writeError(r.Context(), w, types.NewNotFoundError("user not found: "+username, "username"))
		return
	}
	if err != nil {
		h.internalError(r.Context(), w, "get user", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	err := h.users.Delete(r.Context(), username)
	if errors.Is(err, users.ErrUserNotFound) {
		h.writeError(r.Context(), w, types.NewNotFoundError("user not found: "+username, "username"))
		return
	}
	if err != nil {
		h.internalError(r.Context(), w, "delete user", err)
		return
	}

	if h.revoker != nil {
		h.revoker.DestroyUser(username)
	}
	w.WriteHeader(http.StatusNoContent)
}

package httpapi

import (
	"errors"
	"net/http"

	"staffhub.org/internal/auth"
)

type createUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

// handleUsers creates identity records. The whole users group is guarded at
// registry level, so this inherits the group policy.
func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !a.authorize(w, r, "users.create") {
		return
	}

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.authsvc.RegisterUser(r.Context(), req.Username, req.Password, req.Email, req.FullName, auth.ParseRoles(req.Roles))
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "username or email already in use")
		return
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	a.recorder.RecordIfMutation(r.Context(), "users.create", user)
	writeJSON(w, http.StatusCreated, user)
}

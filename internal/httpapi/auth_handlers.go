package httpapi

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"apiscope.dev/internal/audit"
	"apiscope.dev/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func userToPayload(u *auth.User) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func validateCredentials(email, password string, errs []string) []string {
	if email == "" || !emailRx.MatchString(email) {
		errs = append(errs, "A valid email is required.")
	}
	if len(password) < 6 {
		errs = append(errs, "Password must be at least 6 characters long.")
	}
	return errs
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var errs []string
	if len(strings.TrimSpace(req.Name)) < 2 {
		errs = append(errs, "Name must be at least 2 characters long.")
	}
	errs = validateCredentials(req.Email, req.Password, errs)
	if len(errs) > 0 {
		writeValidationError(w, r, errs)
		return
	}

	sess, err := a.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	ctx := auth.ContextWithUserID(r.Context(), sess.User.ID)
	_ = audit.LogEvent(ctx, "auth.user.registered", map[string]any{
		"email": sess.User.Email,
	})

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token: sess.Token,
		User:  userToPayload(sess.User),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if errs := validateCredentials(req.Email, req.Password, nil); len(errs) > 0 {
		writeValidationError(w, r, errs)
		return
	}

	sess, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	ctx := auth.ContextWithUserID(r.Context(), sess.User.ID)
	_ = audit.LogEvent(ctx, "auth.user.login", map[string]any{
		"email": sess.User.Email,
	})

	writeJSON(w, http.StatusOK, sessionResponse{
		Token: sess.Token,
		User:  userToPayload(sess.User),
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized: missing bearer token")
		return
	}

	user, err := a.auth.Me(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": userToPayload(user),
	})
}

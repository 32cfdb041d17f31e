package api

import (
	"net/http"
	"strings"

	"github.com/eleven-am/spycat/internal/agency"
	"github.com/eleven-am/spycat/internal/logger"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.agency.Ping(r.Context()); err != nil {
		logger.DB().Error("health check failed", "err", err)
		writeDetail(w, http.StatusServiceUnavailable, "Error connecting to the database")
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Welcome to the Spy Cat Agency!"})
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var in agency.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := h.agency.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// login takes an OAuth2 password form: username and password.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, r, agency.Invalid("Invalid form body"))
		return
	}

	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if strings.TrimSpace(username) == "" || password == "" {
		writeError(w, r, agency.Invalid("username and password are required"))
		return
	}

	pair, err := h.agency.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, r, agency.Unauthorized("Not authenticated"))
		return
	}

	pair, err := h.agency.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.agency.Logout(r.Context(), currentCat(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Logged out"})
}

func (h *handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.agency.ForgotPassword(r.Context(), body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Password reset token issued",
		"reset_token": token,
	})
}

// resetPassword accepts the token in the body or, failing that, the path.
func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	token := body.Token
	if token == "" {
		token = r.PathValue("token")
	}

	if err := h.agency.ResetPassword(r.Context(), token, body.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Password reset successfully"})
}

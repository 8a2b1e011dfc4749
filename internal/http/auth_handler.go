package httpapi

import (
	"errors"
	"net/http"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/service"
	"eco-dashboard/internal/session"

	"go.uber.org/zap"
)

// User-facing auth messages, kept verbatim from the login form.
const (
	msgWrongPassword = "Contraseña incorrecta"
	msgUnknownEmail  = "No existe una organización con ese correo electrónico"
)

type AuthHandler struct {
	auth     service.AuthService
	sessions *session.Manager
	cookie   string
	logger   *zap.Logger
}

func NewAuthHandler(auth service.AuthService, sessions *session.Manager, cookieName string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cookie: cookieName, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates the organization and establishes the session:
// organization id, name and the logged-in flag are written in one step.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("solicitud inválida"))
		return
	}

	org, err := h.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusUnauthorized, Fail(msgUnknownEmail))
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, Fail(msgWrongPassword))
		default:
			h.logger.Error("Login failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("error interno"))
		}
		return
	}

	token, err := h.sessions.Establish(ctx, org)
	if err != nil {
		h.logger.Error("Session establish failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("error interno"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"token":             token,
		"organization_id":   org.ID,
		"organization_name": org.Name,
		"redirect":          "/dashboard",
	}))
}

// Logout clears the session atomically (single key) and the cookie.
// Absent or already-cleared sessions are not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(h.cookie); err == nil {
		token = c.Value
	}
	if token == "" {
		const bearer = "Bearer "
		auth := r.Header.Get("Authorization")
		if len(auth) > len(bearer) && auth[:len(bearer)] == bearer {
			token = auth[len(bearer):]
		}
	}

	if err := h.sessions.Terminate(r.Context(), token); err != nil {
		h.logger.Error("Session terminate failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("error interno"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   h.cookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"message":  "Has cerrado sesión correctamente",
		"redirect": "/",
	}))
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register creates a new organization. Field errors come back inline so
// the form can re-render them; duplicates surface on the offending
// fields as well.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("solicitud inválida"))
		return
	}

	org, err := h.auth.Register(ctx, service.RegisterRequest{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		IPAddress:       getClientIP(r),
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadRequest, FailFields("datos inválidos", vErr.Fields))
		case errors.Is(err, domain.ErrDuplicateEntity):
			writeJSON(w, http.StatusConflict, FailFields("datos inválidos", map[string]string{
				"name":  "Ya existe una organización con ese nombre o correo",
				"email": "Ya existe una organización con ese nombre o correo",
			}))
		default:
			h.logger.Error("Registration failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("error interno"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, Ok(map[string]any{
		"message":      "Organización registrada exitosamente",
		"organization": org.ToJSON(),
	}))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/auth"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/repositories"
	"nexus-chat/internal/telemetry"
	"nexus-chat/internal/view"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	authService *auth.Service
	sessions    *auth.SessionManager
	renderer    *view.Renderer
	audit       *telemetry.AuditEmitter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *auth.Service, sessions *auth.SessionManager, renderer *view.Renderer, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		renderer:    renderer,
		audit:       audit,
	}
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderPage(c, "register.html", gin.H{})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.authService.Register(c.Request.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmptyFields):
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Username and password are required.")
		case errors.Is(err, repositories.ErrUsernameTaken):
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Username already exists.")
		default:
			h.emitAudit(c, "ERROR", "registration failed")
			h.sessions.AddFlash(c.Writer, c.Request, "error", "Registration failed.")
		}
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}

	h.emitAudit(c, "INFO", "user registered")
	h.sessions.AddFlash(c.Writer, c.Request, "success", "Registered! Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.renderPage(c, "login.html", gin.H{})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.emitAudit(c, "ERROR", "login failed")
		}
		h.sessions.AddFlash(c.Writer, c.Request, "error", "Invalid credentials")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	if err := h.sessions.Establish(c.Writer, c.Request, user.ID, user.Username); err != nil {
		h.emitAudit(c, "ERROR", "session establish failed")
		c.String(http.StatusInternalServerError, "could not establish session")
		return
	}

	h.emitAudit(c, "INFO", "user logged in")
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout tears down the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	_ = h.sessions.Clear(c.Writer, c.Request)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) renderPage(c *gin.Context, name string, data gin.H) {
	data["Notices"] = h.sessions.Flashes(c.Writer, c.Request)
	if err := h.renderer.Render(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "render error")
	}
}

func (h *AuthHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), observability.IPFromRequest(c.Request), userIDFromContext(c))
}

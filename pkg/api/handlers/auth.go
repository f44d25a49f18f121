package handlers

import (
	"context"
	"net/http"
	"time"

	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/users"
	"github.com/labstack/echo/v4"
)

// AuthOptions selects how identities are issued
type AuthOptions struct {
	JWTSecret     string
	JWTExpiration time.Duration
	// Bearer issues a JWT in the response body
	Bearer bool
	// Session sets an HttpOnly session cookie
	Session      bool
	CookieName   string
	SecureCookie bool

	AllowAdminSignup        bool
	AllowSendGodCredentials bool
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users     *users.Service
	sessions  *auth.SessionStore
	blacklist *auth.TokenBlacklist
	opts      AuthOptions
}

// NewAuthHandler creates a new auth handler. sessions and blacklist may be nil
// when Redis is not configured.
func NewAuthHandler(users *users.Service, sessions *auth.SessionStore, blacklist *auth.TokenBlacklist, opts AuthOptions) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, blacklist: blacklist, opts: opts}
}

// PublicConfig godoc
// @Summary Public feature flags
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope{data=models.PublicConfigResponse}
// @Router /config/public [get]
func (h *AuthHandler) PublicConfig(c echo.Context) error {
	return response.OK(c, models.PublicConfigResponse{
		AllowAdminSignup:        h.opts.AllowAdminSignup,
		AllowSendGodCredentials: h.opts.AllowSendGodCredentials,
	})
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=models.AuthResponse}
// @Failure 401 {object} errors.ErrorResponse "Invalid credentials"
// @Failure 429 {object} errors.ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	resp, err := h.issue(c, user)
	if err != nil {
		return err
	}
	return response.Message(c, resp, "Login successful")
}

// Signup godoc
// @Summary Create an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Account"
// @Success 201 {object} response.Envelope{data=models.AuthResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse "Role not allowed"
// @Failure 409 {object} errors.ErrorResponse "Email already exists"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}

	resp, err := h.issue(c, user)
	if err != nil {
		return err
	}
	return response.Created(c, resp, "Account created")
}

// Logout godoc
// @Summary Log out
// @Description Revokes the bearer token until it expires and destroys the session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cred := apimw.CredentialFrom(c)
	if cred != nil && cred.Token != "" && h.blacklist != nil {
		if ttl := time.Until(cred.TokenExpiresAt); ttl > 0 {
			if err := h.blacklist.Add(ctx, cred.Token, ttl); err != nil {
				return err
			}
		}
	}

	if h.sessions != nil {
		sessionID := ""
		if cred != nil {
			sessionID = cred.SessionID
		}
		if cookie, err := c.Cookie(h.opts.CookieName); sessionID == "" && err == nil {
			sessionID = cookie.Value
		}
		if sessionID != "" {
			if err := h.sessions.Destroy(ctx, sessionID); err != nil {
				return err
			}
		}
	}
	if h.opts.Session {
		c.SetCookie(h.cookie("", -1))
	}

	return response.Message(c, nil, "Logged out successfully")
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.UserResponse}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.users.GetProfile(c.Request().Context(), apimw.ActorFrom(c))
	if err != nil {
		return err
	}
	return response.OK(c, user.ToResponse())
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} errors.ErrorResponse "Current password is incorrect"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.users.ChangePassword(c.Request().Context(), apimw.ActorFrom(c), req); err != nil {
		return err
	}
	return response.Message(c, nil, "Password changed successfully")
}

// GodCredentials godoc
// @Summary Email fresh god user credentials
// @Description Creates or resets the god user and emails the new password. Limited to one request every five minutes.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} errors.ErrorResponse "Feature disabled"
// @Failure 429 {object} errors.ErrorResponse "Rate limited"
// @Router /auth/god-credentials [post]
func (h *AuthHandler) GodCredentials(c echo.Context) error {
	if err := h.users.SendGodCredentials(c.Request().Context()); err != nil {
		return err
	}
	return response.Message(c, nil, "God user credentials have been sent")
}

func (h *AuthHandler) issue(c echo.Context, user *models.User) (models.AuthResponse, error) {
	resp := models.AuthResponse{User: user.ToSessionUser()}

	if h.opts.Bearer {
		token, expiresAt, err := auth.GenerateJWT(user.ID, user.Email, user.Role, h.opts.JWTSecret, h.opts.JWTExpiration)
		if err != nil {
			return resp, err
		}
		resp.Token = token
		resp.ExpiresAt = expiresAt.Unix()
	}

	if h.opts.Session && h.sessions != nil {
		id, err := h.sessions.Create(c.Request().Context(), user.ID)
		if err != nil {
			return resp, err
		}
		c.SetCookie(h.cookie(id, int(h.sessions.TTL().Seconds())))
	}

	return resp, nil
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

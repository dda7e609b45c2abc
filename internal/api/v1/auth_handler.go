package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/middleware"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	inputsanitize "github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/sanitize"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/service"
)

// accessTokenMaxAge matches the token TTL issued by the auth service.
const accessTokenMaxAge = 12 * 60 * 60

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	LastName  string  `json:"nom"`
	FirstName string  `json:"prenom"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	Phone     *string `json:"tele"`
	City      *string `json:"ville"`
	Address   *string `json:"adr"`
}

// forgotPasswordRequest serves both phases: email alone requests a reset
// token, token plus password consumes it.
type forgotPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

func RegisterAuthRoutes(group *gin.RouterGroup, authService *service.AuthService, userService *service.UserService) {
	if authService == nil {
		return
	}

	handler := NewAuthHandler(authService, userService)
	auth := group.Group("/auth")

	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)
	auth.POST("/logout", handler.Logout)
	auth.POST("/forgot-password", handler.ForgotPassword)
	auth.GET("/me", middleware.JWTAuth(), handler.Me)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Email et mot de passe requis")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		case errors.Is(err, service.ErrAccountPending):
			response.Fail(c, http.StatusForbidden, "Compte en attente de validation")
		case errors.Is(err, service.ErrAccountDisabled):
			response.Fail(c, http.StatusForbidden, "Compte désactivé")
		default:
			response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
		}
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, result.AccessToken, accessTokenMaxAge, "/", "", false, true)

	response.Success(c, "Connexion réussie", gin.H{
		"user":     result.User,
		"role":     result.User.Role,
		"redirect": result.Redirect,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		LastName:  inputsanitize.Text(req.LastName),
		FirstName: inputsanitize.Text(req.FirstName),
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.UserRole(strings.TrimSpace(req.Role)),
		Phone:     inputsanitize.TextPtr(req.Phone),
		City:      inputsanitize.TextPtr(req.City),
		Address:   inputsanitize.TextPtr(req.Address),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, "Cet email est déjà utilisé")
		case errors.Is(err, service.ErrPasswordTooShort):
			response.Fail(c, http.StatusBadRequest, "Mot de passe trop court (8 caractères minimum)")
		case errors.Is(err, service.ErrInvalidRegistration):
			response.Fail(c, http.StatusBadRequest, "Nom, prénom et email sont requis")
		default:
			response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
		}
		return
	}

	response.Success(c, "Compte créé, en attente de validation", user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	response.Success(c, "Déconnexion réussie", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Non autorisé")
		return
	}

	user, err := h.userService.GetByEmail(c.Request.Context(), claims.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, "Utilisateur introuvable")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	if req.Token != "" {
		if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidResetToken):
				response.Fail(c, http.StatusBadRequest, "Lien de réinitialisation invalide ou expiré")
			case errors.Is(err, service.ErrPasswordTooShort):
				response.Fail(c, http.StatusBadRequest, "Mot de passe trop court (8 caractères minimum)")
			default:
				response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
			}
			return
		}
		response.Success(c, "Mot de passe réinitialisé", nil)
		return
	}

	// Always succeed for the request phase so the endpoint cannot be used
	// to probe which emails have accounts.
	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
		return
	}
	response.Success(c, "Si un compte existe, un lien de réinitialisation a été envoyé", nil)
}

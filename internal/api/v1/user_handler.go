package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/middleware"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/service"
)

// adminRoles gate account management.
var adminRoles = []string{
	string(model.UserRoleAdmin),
	string(model.UserRoleAdministration),
	string(model.UserRoleDean),
}

type UserHandler struct {
	userService *service.UserService
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func RegisterUserRoutes(group *gin.RouterGroup, userService *service.UserService) {
	if userService == nil {
		return
	}

	handler := NewUserHandler(userService)
	users := group.Group("/users")
	users.Use(middleware.JWTAuth(), middleware.RequireRole(adminRoles...))

	users.GET("", handler.List)
	users.PUT("/:id/status", handler.SetStatus)
}

func (h *UserHandler) List(c *gin.Context) {
	filter := repository.UserListFilter{}
	if role := c.Query("role"); role != "" {
		r := model.UserRole(role)
		filter.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := model.UserStatus(status)
		filter.Status = &s
	}

	items, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la récupération des utilisateurs")
		return
	}
	response.OK(c, items)
}

func (h *UserHandler) SetStatus(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Non autorisé")
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	user, err := h.userService.SetStatus(c.Request.Context(), claims.UserID, c.Param("id"), model.UserStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			response.Fail(c, http.StatusBadRequest, "Statut invalide")
		case errors.Is(err, service.ErrInvalidUserID):
			response.Fail(c, http.StatusBadRequest, "Identifiant invalide")
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "Utilisateur introuvable")
		default:
			response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
		}
		return
	}

	response.Success(c, "Statut mis à jour", user)
}

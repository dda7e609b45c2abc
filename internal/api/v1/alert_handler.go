package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	inputsanitize "github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/sanitize"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/service"
)

type AlertHandler struct {
	alertService *service.AlertService
}

type alertRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	UserID      string `json:"userId"`
}

type deleteAlertRequest struct {
	ID string `json:"id"`
}

func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

func RegisterAlertRoutes(group *gin.RouterGroup, alertService *service.AlertService) {
	if alertService == nil {
		return
	}

	handler := NewAlertHandler(alertService)
	alerts := group.Group("/alerts")

	// The legacy alert API carries no session requirement; type validation
	// is the only guard on mutations.
	alerts.GET("", handler.List)
	alerts.POST("", handler.Create)
	alerts.PUT("", handler.Update)
	alerts.DELETE("", handler.Delete)
}

func (h *AlertHandler) List(c *gin.Context) {
	items, err := h.alertService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la récupération des alertes")
		return
	}
	response.OK(c, items)
}

func (h *AlertHandler) Create(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	item, err := h.alertService.Create(c.Request.Context(), service.CreateAlertRequest{
		Title:       inputsanitize.Text(req.Title),
		Description: inputsanitize.Text(req.Description),
		Type:        model.AlertType(req.Type),
		UserID:      req.UserID,
	})
	if err != nil {
		handleAlertServiceError(c, err)
		return
	}

	response.Success(c, "Alerte créée", item)
}

func (h *AlertHandler) Update(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	err := h.alertService.Update(c.Request.Context(), service.UpdateAlertRequest{
		ID:          req.ID,
		Title:       inputsanitize.Text(req.Title),
		Description: inputsanitize.Text(req.Description),
		Type:        model.AlertType(req.Type),
	})
	if err != nil {
		handleAlertServiceError(c, err)
		return
	}

	response.Success(c, "Alerte mise à jour", nil)
}

// Delete surfaces every store failure as a 500, a missing id included.
// Consumers treat any non-2xx as "refresh the list".
func (h *AlertHandler) Delete(c *gin.Context) {
	var req deleteAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	if err := h.alertService.Delete(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, service.ErrInvalidAlertReq) {
			response.Fail(c, http.StatusBadRequest, "Identifiant requis")
			return
		}
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la suppression de l'alerte")
		return
	}

	response.Success(c, "Alerte supprimée", nil)
}

func handleAlertServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAlertType):
		response.Fail(c, http.StatusBadRequest, "Type d'alerte invalide")
	case errors.Is(err, service.ErrInvalidAlertReq):
		response.Fail(c, http.StatusBadRequest, "Le titre et la description sont requis")
	default:
		response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
	}
}

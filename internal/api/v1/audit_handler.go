package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/middleware"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 500
)

type AuditHandler struct {
	auditRepo repository.AuditRepository
}

func NewAuditHandler(auditRepo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

func RegisterAuditRoutes(group *gin.RouterGroup, auditRepo repository.AuditRepository) {
	if auditRepo == nil {
		return
	}

	handler := NewAuditHandler(auditRepo)
	audit := group.Group("/audit-logs")
	audit.Use(middleware.JWTAuth(), middleware.RequireRole(string(model.UserRoleAdmin)))

	audit.GET("", handler.List)
}

func (h *AuditHandler) List(c *gin.Context) {
	filter := repository.AuditListFilter{
		Limit: auditDefaultLimit,
	}

	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Identifiant invalide")
			return
		}
		filter.UserID = &id
	}
	if raw := c.Query("resource_type"); raw != "" {
		filter.ResourceType = &raw
	}
	if raw := c.Query("start"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Date de début invalide")
			return
		}
		filter.StartTime = &ts
	}
	if raw := c.Query("end"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Date de fin invalide")
			return
		}
		filter.EndTime = &ts
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 32); err == nil && limit > 0 {
			if limit > auditMaxLimit {
				limit = auditMaxLimit
			}
			filter.Limit = int32(limit)
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.ParseInt(raw, 10, 32); err == nil && offset >= 0 {
			filter.Offset = int32(offset)
		}
	}

	items, err := h.auditRepo.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la récupération du journal d'audit")
		return
	}
	response.OK(c, items)
}

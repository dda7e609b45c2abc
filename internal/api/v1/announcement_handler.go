package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/middleware"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	inputsanitize "github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/sanitize"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/service"
)

// staffRoles may manage announcements once authenticated.
var staffRoles = []string{
	string(model.UserRoleAdmin),
	string(model.UserRoleDean),
	string(model.UserRoleAdministration),
	string(model.UserRoleProfessor),
}

type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

type updateAnnouncementRequest struct {
	Title      *string `json:"titre"`
	Content    *string `json:"contenu"`
	Importance *int    `json:"deg_imp"`
}

func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
	}
}

func RegisterAnnouncementRoutes(group *gin.RouterGroup, announcementService *service.AnnouncementService) {
	if announcementService == nil {
		return
	}

	handler := NewAnnouncementHandler(announcementService)
	ann := group.Group("/announcements")

	ann.GET("", handler.List)
	ann.GET("/:ida", handler.GetByID)

	ann.Use(middleware.JWTAuth())
	ann.POST("", handler.Create)
	ann.PUT("/:ida", middleware.RequireRole(staffRoles...), handler.Update)
	ann.DELETE("/:ida", middleware.RequireRole(staffRoles...), handler.Delete)
}

// List is the public feed: every announcement with its authors and its
// attachment (or null), ordered and truncated by query parameters.
func (h *AnnouncementHandler) List(c *gin.Context) {
	opts := repository.AnnouncementListOptions{
		OrderBy: c.DefaultQuery("orderBy", "date_pub"),
		Order:   repository.SortDesc,
	}
	if strings.EqualFold(c.Query("order"), string(repository.SortAsc)) {
		opts.Order = repository.SortAsc
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}

	items, err := h.announcementService.List(c.Request.Context(), opts)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la récupération des annonces")
		return
	}
	response.OK(c, items)
}

func (h *AnnouncementHandler) GetByID(c *gin.Context) {
	item, err := h.announcementService.GetByID(c.Request.Context(), c.Param("ida"))
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.OK(c, item)
}

// Create accepts a multipart form: title, content, importance and an
// optional file attachment.
func (h *AnnouncementHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Non autorisé")
		return
	}

	title := inputsanitize.Text(c.PostForm("title"))
	content := inputsanitize.RichText(c.PostForm("content"))
	if title == "" || content == "" {
		response.Fail(c, http.StatusBadRequest, "Le titre et le contenu sont requis")
		return
	}

	importance := model.ImportanceLow
	if parsed, err := strconv.Atoi(c.PostForm("importance")); err == nil && parsed > 0 {
		importance = parsed
	}

	attachment, err := attachmentFromForm(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Fichier invalide")
		return
	}

	item, err := h.announcementService.Create(c.Request.Context(), claims.Email, service.CreateAnnouncementRequest{
		Title:      title,
		Content:    content,
		Importance: importance,
		Attachment: attachment,
	})
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}

	response.Success(c, "Annonce créée avec succès", item)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Non autorisé")
		return
	}

	var req updateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	item, err := h.announcementService.Update(c.Request.Context(), claims.UserID, c.Param("ida"), service.UpdateAnnouncementRequest{
		Title:      inputsanitize.TextPtr(req.Title),
		Content:    richTextPtr(req.Content),
		Importance: req.Importance,
	})
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}

	response.Success(c, "Annonce mise à jour", item)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Non autorisé")
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), claims.UserID, c.Param("ida")); err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}

	response.Success(c, "Annonce supprimée", nil)
}

// attachmentFromForm extracts the optional upload. A missing or empty file
// part means no attachment; validation of type and size happens in the
// service before anything touches disk.
func attachmentFromForm(c *gin.Context) (*service.Attachment, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fileHeader == nil || fileHeader.Size == 0 {
		return nil, nil
	}

	return &service.Attachment{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Open: func() (io.ReadCloser, error) {
			f, openErr := fileHeader.Open()
			if openErr != nil {
				return nil, openErr
			}
			return f, nil
		},
	}, nil
}

func richTextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	value := inputsanitize.RichText(*input)
	return &value
}

func handleAnnouncementServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		response.Fail(c, http.StatusNotFound, "Annonce introuvable")
	case errors.Is(err, service.ErrPersonNotFound):
		response.Fail(c, http.StatusNotFound, "Utilisateur introuvable")
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, "Type de fichier non supporté")
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, "Fichier trop volumineux (max 5MB)")
	case errors.Is(err, service.ErrInvalidAnnouncementReq):
		response.Fail(c, http.StatusBadRequest, "Le titre et le contenu sont requis")
	default:
		response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
	}
}

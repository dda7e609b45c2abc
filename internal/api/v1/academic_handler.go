package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/middleware"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	inputsanitize "github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/sanitize"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/service"
)

type AcademicHandler struct {
	academicService *service.AcademicService
}

type departmentRequest struct {
	Code        string  `json:"coded"`
	Name        string  `json:"intitule"`
	Description *string `json:"description"`
}

type programRequest struct {
	Code           string  `json:"codef"`
	Name           string  `json:"intitule"`
	Level          *string `json:"niveau"`
	DurationYears  *int    `json:"duree"`
	DepartmentCode string  `json:"coded"`
}

type moduleRequest struct {
	Code        string  `json:"codem"`
	Name        string  `json:"intitule"`
	HourlyLoad  *int    `json:"volumeh"`
	Semester    *string `json:"semestre"`
	ProgramCode string  `json:"codef"`
}

func NewAcademicHandler(academicService *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{academicService: academicService}
}

func RegisterAcademicRoutes(group *gin.RouterGroup, academicService *service.AcademicService) {
	if academicService == nil {
		return
	}

	handler := NewAcademicHandler(academicService)

	departments := group.Group("/departements")
	departments.GET("", handler.ListDepartments)
	departments.GET("/:coded", handler.GetDepartment)
	departments.Use(middleware.JWTAuth(), middleware.RequireRole(adminRoles...))
	departments.POST("", handler.CreateDepartment)
	departments.PUT("/:coded", handler.UpdateDepartment)
	departments.DELETE("/:coded", handler.DeleteDepartment)

	programs := group.Group("/filieres")
	programs.GET("", handler.ListPrograms)
	programs.GET("/:codef", handler.GetProgram)
	programs.GET("/:codef/modules", handler.ListProgramModules)
	programs.Use(middleware.JWTAuth(), middleware.RequireRole(adminRoles...))
	programs.POST("", handler.CreateProgram)
	programs.DELETE("/:codef", handler.DeleteProgram)

	modules := group.Group("/modules")
	modules.GET("", handler.ListModules)
	modules.Use(middleware.JWTAuth(), middleware.RequireRole(adminRoles...))
	modules.POST("", handler.CreateModule)
	modules.DELETE("/:codem", handler.DeleteModule)
}

func (h *AcademicHandler) ListDepartments(c *gin.Context) {
	items, err := h.academicService.ListDepartments(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la récupération des départements")
		return
	}
	response.OK(c, items)
}

// GetDepartment returns the department with its filières embedded.
func (h *AcademicHandler) GetDepartment(c *gin.Context) {
	item, err := h.academicService.GetDepartment(c.Request.Context(), c.Param("coded"))
	if err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.OK(c, item)
}

func (h *AcademicHandler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	dept := &model.Department{
		Code:        inputsanitize.Text(req.Code),
		Name:        inputsanitize.Text(req.Name),
		Description: inputsanitize.TextPtr(req.Description),
	}
	if err := h.academicService.CreateDepartment(c.Request.Context(), dept); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Département créé", dept)
}

func (h *AcademicHandler) UpdateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	dept := &model.Department{
		Code:        c.Param("coded"),
		Name:        inputsanitize.Text(req.Name),
		Description: inputsanitize.TextPtr(req.Description),
	}
	if err := h.academicService.UpdateDepartment(c.Request.Context(), dept); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Département mis à jour", dept)
}

func (h *AcademicHandler) DeleteDepartment(c *gin.Context) {
	if err := h.academicService.DeleteDepartment(c.Request.Context(), c.Param("coded")); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Département supprimé", nil)
}

func (h *AcademicHandler) ListPrograms(c *gin.Context) {
	var departmentCode *string
	if coded := c.Query("coded"); coded != "" {
		departmentCode = &coded
	}

	items, err := h.academicService.ListPrograms(c.Request.Context(), departmentCode)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Erreur lors de la récupération des filières")
		return
	}
	response.OK(c, items)
}

func (h *AcademicHandler) GetProgram(c *gin.Context) {
	item, err := h.academicService.GetProgram(c.Request.Context(), c.Param("codef"))
	if err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.OK(c, item)
}

func (h *AcademicHandler) ListProgramModules(c *gin.Context) {
	items, err := h.academicService.ListModules(c.Request.Context(), c.Param("codef"))
	if err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.OK(c, items)
}

func (h *AcademicHandler) CreateProgram(c *gin.Context) {
	var req programRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	program := &model.Program{
		Code:           inputsanitize.Text(req.Code),
		Name:           inputsanitize.Text(req.Name),
		Level:          inputsanitize.TextPtr(req.Level),
		DurationYears:  req.DurationYears,
		DepartmentCode: inputsanitize.Text(req.DepartmentCode),
	}
	if err := h.academicService.CreateProgram(c.Request.Context(), program); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Filière créée", program)
}

func (h *AcademicHandler) DeleteProgram(c *gin.Context) {
	if err := h.academicService.DeleteProgram(c.Request.Context(), c.Param("codef")); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Filière supprimée", nil)
}

func (h *AcademicHandler) ListModules(c *gin.Context) {
	items, err := h.academicService.ListModules(c.Request.Context(), c.Query("codef"))
	if err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.OK(c, items)
}

func (h *AcademicHandler) CreateModule(c *gin.Context) {
	var req moduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	module := &model.CourseModule{
		Code:        inputsanitize.Text(req.Code),
		Name:        inputsanitize.Text(req.Name),
		HourlyLoad:  req.HourlyLoad,
		Semester:    inputsanitize.TextPtr(req.Semester),
		ProgramCode: inputsanitize.Text(req.ProgramCode),
	}
	if err := h.academicService.CreateModule(c.Request.Context(), module); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Module créé", module)
}

func (h *AcademicHandler) DeleteModule(c *gin.Context) {
	if err := h.academicService.DeleteModule(c.Request.Context(), c.Param("codem")); err != nil {
		handleAcademicServiceError(c, err)
		return
	}
	response.Success(c, "Module supprimé", nil)
}

func handleAcademicServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.Fail(c, http.StatusNotFound, "Département introuvable")
	case errors.Is(err, service.ErrProgramNotFound):
		response.Fail(c, http.StatusNotFound, "Filière introuvable")
	case errors.Is(err, service.ErrModuleNotFound):
		response.Fail(c, http.StatusNotFound, "Module introuvable")
	case errors.Is(err, service.ErrCodeTaken):
		response.Fail(c, http.StatusConflict, "Ce code est déjà utilisé")
	case errors.Is(err, service.ErrInvalidAcademicReq):
		response.Fail(c, http.StatusBadRequest, "Données invalides")
	default:
		response.Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
	}
}

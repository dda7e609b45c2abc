package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

const (
	minProgramDuration = 1
	maxProgramDuration = 10
)

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrInvalidAcademicReq = errors.New("invalid academic entity input")
	ErrCodeTaken          = errors.New("code already in use")
)

// AcademicService manages departments, their programs (filières) and the
// programs' course modules.
type AcademicService struct {
	departmentRepo repository.DepartmentRepository
	programRepo    repository.ProgramRepository
	moduleRepo     repository.CourseModuleRepository
	logger         *zap.Logger
}

func NewAcademicService(
	departmentRepo repository.DepartmentRepository,
	programRepo repository.ProgramRepository,
	moduleRepo repository.CourseModuleRepository,
	logger *zap.Logger,
) *AcademicService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AcademicService{
		departmentRepo: departmentRepo,
		programRepo:    programRepo,
		moduleRepo:     moduleRepo,
		logger:         logger,
	}
}

func (s *AcademicService) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	return s.departmentRepo.List(ctx)
}

func (s *AcademicService) GetDepartment(ctx context.Context, code string) (*model.Department, error) {
	dept, err := s.departmentRepo.FindByCodeWithPrograms(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return dept, nil
}

func (s *AcademicService) CreateDepartment(ctx context.Context, d *model.Department) error {
	d.Code = strings.TrimSpace(d.Code)
	d.Name = strings.TrimSpace(d.Name)
	if d.Code == "" || d.Name == "" {
		return ErrInvalidAcademicReq
	}

	if err := s.departmentRepo.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (s *AcademicService) UpdateDepartment(ctx context.Context, d *model.Department) error {
	d.Code = strings.TrimSpace(d.Code)
	d.Name = strings.TrimSpace(d.Name)
	if d.Code == "" || d.Name == "" {
		return ErrInvalidAcademicReq
	}

	if err := s.departmentRepo.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}
	return nil
}

func (s *AcademicService) DeleteDepartment(ctx context.Context, code string) error {
	if err := s.departmentRepo.Delete(ctx, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}
	return nil
}

func (s *AcademicService) ListPrograms(ctx context.Context, departmentCode *string) ([]*model.Program, error) {
	return s.programRepo.List(ctx, departmentCode)
}

func (s *AcademicService) GetProgram(ctx context.Context, code string) (*model.Program, error) {
	program, err := s.programRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

func (s *AcademicService) CreateProgram(ctx context.Context, p *model.Program) error {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.DepartmentCode = strings.TrimSpace(p.DepartmentCode)
	if p.Code == "" || p.Name == "" || p.DepartmentCode == "" {
		return ErrInvalidAcademicReq
	}
	if p.Level != nil && !model.ValidProgramLevel(*p.Level) {
		return ErrInvalidAcademicReq
	}
	if p.DurationYears != nil && (*p.DurationYears < minProgramDuration || *p.DurationYears > maxProgramDuration) {
		return ErrInvalidAcademicReq
	}

	if _, err := s.departmentRepo.FindByCode(ctx, p.DepartmentCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}

	if err := s.programRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (s *AcademicService) DeleteProgram(ctx context.Context, code string) error {
	if err := s.programRepo.Delete(ctx, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	return nil
}

func (s *AcademicService) ListModules(ctx context.Context, programCode string) ([]*model.CourseModule, error) {
	if _, err := s.GetProgram(ctx, programCode); err != nil {
		return nil, err
	}
	return s.moduleRepo.FindByProgram(ctx, strings.TrimSpace(programCode))
}

func (s *AcademicService) CreateModule(ctx context.Context, m *model.CourseModule) error {
	m.Code = strings.TrimSpace(m.Code)
	m.Name = strings.TrimSpace(m.Name)
	m.ProgramCode = strings.TrimSpace(m.ProgramCode)
	if m.Code == "" || m.Name == "" || m.ProgramCode == "" {
		return ErrInvalidAcademicReq
	}
	if m.HourlyLoad != nil && *m.HourlyLoad <= 0 {
		return ErrInvalidAcademicReq
	}

	if _, err := s.GetProgram(ctx, m.ProgramCode); err != nil {
		return err
	}

	if err := s.moduleRepo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (s *AcademicService) DeleteModule(ctx context.Context, code string) error {
	if err := s.moduleRepo.Delete(ctx, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrModuleNotFound
		}
		return err
	}
	return nil
}

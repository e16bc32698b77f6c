package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-freelance/internal/models"
	"github.com/diewo77/go-freelance/validation"
)

// ProjectService is ownership-scoped CRUD over projects. The status
// enum is validated at the boundary; no transition rules are enforced.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ClientID    uint   `json:"client_id"`
	Status      string `json:"status"`
}

type UpdateProjectInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ClientID    *uint   `json:"client_id"`
	Status      *string `json:"status"`
}

func (s *ProjectService) Create(ownerID uint, in CreateProjectInput) (*models.Project, error) {
	v := make(validation.Violations)
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 255, v)
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	status := models.ProjectStatusTodo
	if in.Status != "" {
		st := models.ProjectStatus(strings.ToLower(in.Status))
		if !models.ValidProjectStatus(st) {
			v["status"] = "invalid_value"
		} else {
			status = st
		}
	}
	if err := validated(v); err != nil {
		return nil, err
	}

	// A project may only reference a client owned by the same user, so
	// the owner invariant holds by construction.
	var count int64
	if err := s.db.Model(&models.Client{}).Where("id = ? AND user_id = ?", in.ClientID, ownerID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check client reference: %w", err)
	}
	if count == 0 {
		return nil, ErrInvalidReference
	}

	project := models.Project{
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		ClientID:    in.ClientID,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) FindAll(ownerID uint) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.Where("user_id = ?", ownerID).
		Preload("Client").
		Order("created_at DESC, id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) FindOne(ownerID, id uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("id = ? AND user_id = ?", id, ownerID).
		Preload("Client").
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) Update(ownerID, id uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.FindOne(ownerID, id)
	if err != nil {
		return nil, err
	}
	v := make(validation.Violations)
	if in.Title != nil {
		validation.Required("title", *in.Title, v)
		validation.MaxLen("title", *in.Title, 255, v)
	}
	var status models.ProjectStatus
	if in.Status != nil {
		status = models.ProjectStatus(strings.ToLower(*in.Status))
		if !models.ValidProjectStatus(status) {
			v["status"] = "invalid_value"
		}
	}
	if err := validated(v); err != nil {
		return nil, err
	}
	if in.ClientID != nil && *in.ClientID != project.ClientID {
		var count int64
		if err := s.db.Model(&models.Client{}).Where("id = ? AND user_id = ?", *in.ClientID, ownerID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check client reference: %w", err)
		}
		if count == 0 {
			return nil, ErrInvalidReference
		}
		project.ClientID = *in.ClientID
	}
	if in.Title != nil {
		project.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		project.Status = status
	}
	if err := s.db.Save(project).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.FindOne(ownerID, project.ID)
}

// Remove deletes the owned project unless invoices still reference it.
func (s *ProjectService) Remove(ownerID, id uint) error {
	project, err := s.FindOne(ownerID, id)
	if err != nil {
		return err
	}
	var dependents int64
	if err := s.db.Model(&models.Invoice{}).Where("project_id = ?", project.ID).Count(&dependents).Error; err != nil {
		return fmt.Errorf("count invoices: %w", err)
	}
	if dependents > 0 {
		return ErrConflict
	}
	if err := s.db.Delete(project).Error; err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

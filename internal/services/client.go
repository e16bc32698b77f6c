package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-freelance/internal/models"
	"github.com/diewo77/go-freelance/validation"
)

// ClientService is ownership-scoped CRUD over clients. No derived
// fields, no side effects beyond persistence.
type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

type CreateClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

type UpdateClientInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Notes   *string `json:"notes"`
}

func (s *ClientService) Create(ownerID uint, in CreateClientInput) (*models.Client, error) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	if err := validated(v); err != nil {
		return nil, err
	}
	client := models.Client{
		UserID:  ownerID,
		Name:    strings.TrimSpace(in.Name),
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
		Notes:   in.Notes,
	}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &client, nil
}

func (s *ClientService) FindAll(ownerID uint) ([]models.Client, error) {
	clients := []models.Client{}
	err := s.db.Where("user_id = ?", ownerID).Order("name").Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) FindOne(ownerID, id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", id, ownerID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	return &client, nil
}

func (s *ClientService) Update(ownerID, id uint, in UpdateClientInput) (*models.Client, error) {
	client, err := s.FindOne(ownerID, id)
	if err != nil {
		return nil, err
	}
	v := make(validation.Violations)
	if in.Name != nil {
		validation.Required("name", *in.Name, v)
		validation.MaxLen("name", *in.Name, 255, v)
	}
	if err := validated(v); err != nil {
		return nil, err
	}
	if in.Name != nil {
		client.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Company != nil {
		client.Company = *in.Company
	}
	if in.Notes != nil {
		client.Notes = *in.Notes
	}
	if err := s.db.Save(client).Error; err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

// Remove deletes the owned client unless projects or invoices still
// reference it.
func (s *ClientService) Remove(ownerID, id uint) error {
	client, err := s.FindOne(ownerID, id)
	if err != nil {
		return err
	}
	var dependents int64
	if err := s.db.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&dependents).Error; err != nil {
		return fmt.Errorf("count invoices: %w", err)
	}
	if dependents > 0 {
		return ErrConflict
	}
	if err := s.db.Model(&models.Project{}).Where("client_id = ?", client.ID).Count(&dependents).Error; err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if dependents > 0 {
		return ErrConflict
	}
	if err := s.db.Delete(client).Error; err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

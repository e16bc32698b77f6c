package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-freelance/internal/models"
	"github.com/diewo77/go-freelance/pdf"
	"github.com/diewo77/go-freelance/validation"
)

// InvoiceService owns the invoice lifecycle: derived amounts, status
// bookkeeping, ownership-scoped CRUD, and keeping the stored pdf_url in
// sync with the generated document.
type InvoiceService struct {
	db   *gorm.DB
	docs *pdf.Generator
}

func NewInvoiceService(db *gorm.DB, docs *pdf.Generator) *InvoiceService {
	return &InvoiceService{db: db, docs: docs}
}

// CreateInvoiceInput is the create payload. AmountHT is a pointer so a
// missing field can be told apart from an explicit zero.
type CreateInvoiceInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ClientID    uint     `json:"client_id"`
	ProjectID   *uint    `json:"project_id"`
	AmountHT    *float64 `json:"amount_ht"`
	TVA         *float64 `json:"tva"`
	Status      string   `json:"status"`
}

// UpdateInvoiceInput has partial-update semantics: nil fields keep
// their stored value. ProjectID zero clears the project link.
type UpdateInvoiceInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ClientID    *uint    `json:"client_id"`
	ProjectID   *uint    `json:"project_id"`
	AmountHT    *float64 `json:"amount_ht"`
	TVA         *float64 `json:"tva"`
	Status      *string  `json:"status"`
}

// Create validates the input, derives AmountTTC, persists the record
// owned by ownerID, then generates the document and stores its path.
// A generation failure keeps the record (without pdf_url) and surfaces
// as *DocumentWriteError.
func (s *InvoiceService) Create(ownerID uint, in CreateInvoiceInput) (*models.Invoice, error) {
	v := make(validation.Violations)
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 255, v)
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	if in.AmountHT == nil {
		v["amount_ht"] = "required"
	} else {
		validation.NonNegativeFloat("amount_ht", *in.AmountHT, v)
	}
	tva := 20.0
	if in.TVA != nil {
		tva = *in.TVA
		validation.NonNegativeFloat("tva", tva, v)
	}
	status := models.InvoiceStatusDraft
	if in.Status != "" {
		st := models.InvoiceStatus(strings.ToLower(in.Status))
		if !models.ValidInvoiceStatus(st) {
			v["status"] = "invalid_value"
		} else {
			status = st
		}
	}
	if err := validated(v); err != nil {
		return nil, err
	}

	if err := s.checkClientRef(ownerID, in.ClientID); err != nil {
		return nil, err
	}
	if in.ProjectID != nil && *in.ProjectID != 0 {
		if err := s.checkProjectRef(ownerID, *in.ProjectID); err != nil {
			return nil, err
		}
	}

	inv := models.Invoice{
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		ClientID:    in.ClientID,
		AmountHT:    *in.AmountHT,
		TVA:         tva,
	}
	if in.ProjectID != nil && *in.ProjectID != 0 {
		pid := *in.ProjectID
		inv.ProjectID = &pid
	}
	inv.AmountTTC = inv.ComputeTTC()

	if err := s.db.Create(&inv).Error; err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	if err := s.generate(&inv); err != nil {
		return nil, err
	}
	return s.FindOne(ownerID, inv.ID)
}

// FindAll returns the owner's invoices with client and project joined,
// newest first.
func (s *InvoiceService) FindAll(ownerID uint) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := s.db.Where("user_id = ?", ownerID).
		Preload("Client").
		Preload("Project").
		Order("created_at DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// FindOne returns the invoice only when both id and owner match.
func (s *InvoiceService) FindOne(ownerID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.Where("id = ? AND user_id = ?", id, ownerID).
		Preload("Client").
		Preload("Project").
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &inv, nil
}

// Update applies the present fields only. AmountTTC is recomputed from
// the new value where supplied and the stored value otherwise. The
// document is regenerated (same path) whenever any field that appears
// in it changed.
func (s *InvoiceService) Update(ownerID, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.Where("id = ? AND user_id = ?", id, ownerID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}

	v := make(validation.Violations)
	if in.Title != nil {
		validation.Required("title", *in.Title, v)
		validation.MaxLen("title", *in.Title, 255, v)
	}
	if in.AmountHT != nil {
		validation.NonNegativeFloat("amount_ht", *in.AmountHT, v)
	}
	if in.TVA != nil {
		validation.NonNegativeFloat("tva", *in.TVA, v)
	}
	var status models.InvoiceStatus
	if in.Status != nil {
		status = models.InvoiceStatus(strings.ToLower(*in.Status))
		if !models.ValidInvoiceStatus(status) {
			v["status"] = "invalid_value"
		}
	}
	if err := validated(v); err != nil {
		return nil, err
	}

	regen := false
	if in.ClientID != nil && *in.ClientID != inv.ClientID {
		if err := s.checkClientRef(ownerID, *in.ClientID); err != nil {
			return nil, err
		}
		inv.ClientID = *in.ClientID
		regen = true
	}
	if in.ProjectID != nil {
		if *in.ProjectID == 0 {
			if inv.ProjectID != nil {
				inv.ProjectID = nil
				regen = true
			}
		} else if inv.ProjectID == nil || *inv.ProjectID != *in.ProjectID {
			if err := s.checkProjectRef(ownerID, *in.ProjectID); err != nil {
				return nil, err
			}
			pid := *in.ProjectID
			inv.ProjectID = &pid
			regen = true
		}
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != inv.Title {
		inv.Title = strings.TrimSpace(*in.Title)
		regen = true
	}
	if in.Description != nil && *in.Description != inv.Description {
		inv.Description = *in.Description
		regen = true
	}
	if in.AmountHT != nil && *in.AmountHT != inv.AmountHT {
		inv.AmountHT = *in.AmountHT
		regen = true
	}
	if in.TVA != nil && *in.TVA != inv.TVA {
		inv.TVA = *in.TVA
		regen = true
	}
	if in.Status != nil {
		// status is a business marker, not a document field: no regen
		inv.Status = status
	}
	inv.AmountTTC = inv.ComputeTTC()

	if err := s.db.Save(&inv).Error; err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	if regen {
		if err := s.generate(&inv); err != nil {
			return nil, err
		}
	}
	return s.FindOne(ownerID, inv.ID)
}

// UpdateStatus sets the status without touching financial fields or the
// document. Any member of the closed set is accepted from any prior
// state; there is no transition table.
func (s *InvoiceService) UpdateStatus(ownerID, id uint, status string) (*models.Invoice, error) {
	st := models.InvoiceStatus(strings.ToLower(status))
	if !models.ValidInvoiceStatus(st) {
		v := validation.Violations{"status": "invalid_value"}
		return nil, &ValidationError{Violations: v}
	}
	res := s.db.Model(&models.Invoice{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("status", st)
	if res.Error != nil {
		return nil, fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindOne(ownerID, id)
}

// Remove deletes the owned row, then best-effort removes the document
// file. A missing or unreadable file never fails the delete.
func (s *InvoiceService) Remove(ownerID, id uint) error {
	var inv models.Invoice
	if err := s.db.Where("id = ? AND user_id = ?", id, ownerID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load invoice: %w", err)
	}
	if err := s.db.Delete(&inv).Error; err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if inv.PDFUrl != "" {
		if err := os.Remove(inv.PDFUrl); err != nil && !os.IsNotExist(err) {
			log.Printf("invoice %d: could not remove document %s: %v", inv.ID, inv.PDFUrl, err)
		}
	}
	return nil
}

// Revenue sums the tax-inclusive totals of the owner's paid invoices.
func (s *InvoiceService) Revenue(ownerID uint) (float64, error) {
	var invoices []models.Invoice
	err := s.db.Where("user_id = ? AND status = ?", ownerID, models.InvoiceStatusPaid).
		Find(&invoices).Error
	if err != nil {
		return 0, fmt.Errorf("load paid invoices: %w", err)
	}
	var total float64
	for _, inv := range invoices {
		total += inv.AmountTTC
	}
	return total, nil
}

// generate renders the document from the current record state and
// persists the returned path. The snapshot is loaded owner-scoped so
// the file only ever shows data the owner can see.
func (s *InvoiceService) generate(inv *models.Invoice) error {
	snap := pdf.Invoice{
		ID:          inv.ID,
		Title:       inv.Title,
		Description: inv.Description,
		AmountHT:    inv.AmountHT,
		TVA:         inv.TVA,
		AmountTTC:   inv.AmountTTC,
	}
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", inv.ClientID, inv.UserID).First(&client).Error; err == nil {
		snap.ClientName = client.Name
	}
	if inv.ProjectID != nil {
		var project models.Project
		if err := s.db.Where("id = ? AND user_id = ?", *inv.ProjectID, inv.UserID).First(&project).Error; err == nil {
			snap.ProjectTitle = project.Title
		}
	}

	path, err := s.docs.Generate(snap)
	if err != nil {
		return &DocumentWriteError{InvoiceID: inv.ID, Err: err}
	}
	if err := s.db.Model(inv).Update("pdf_url", path).Error; err != nil {
		return fmt.Errorf("store pdf path: %w", err)
	}
	inv.PDFUrl = path
	return nil
}

func (s *InvoiceService) checkClientRef(ownerID, clientID uint) error {
	var count int64
	err := s.db.Model(&models.Client{}).
		Where("id = ? AND user_id = ?", clientID, ownerID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check client reference: %w", err)
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}

func (s *InvoiceService) checkProjectRef(ownerID, projectID uint) error {
	var count int64
	err := s.db.Model(&models.Project{}).
		Where("id = ? AND user_id = ?", projectID, ownerID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check project reference: %w", err)
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}

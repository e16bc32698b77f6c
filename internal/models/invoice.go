package models

import "time"

// InvoiceStatus represents the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// ValidInvoiceStatus reports whether s belongs to the closed status set.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice represents a billing invoice.
// Implements the Ownable interface for ownership-based authorization.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this invoice (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	// Client relationship (required)
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Project relationship (optional)
	ProjectID *uint    `gorm:"index" json:"project_id,omitempty"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	// AmountTTC is derived from AmountHT and TVA on every write that
	// touches either; it is never taken from input.
	AmountHT  float64 `gorm:"not null" json:"amount_ht"`
	TVA       float64 `gorm:"not null;default:20" json:"tva"`
	AmountTTC float64 `gorm:"not null" json:"amount_ttc"`

	// PDFUrl is the storage path of the last successfully generated
	// document. Empty until the first generation succeeds.
	PDFUrl string `gorm:"size:500" json:"pdf_url,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// ComputeTTC derives the tax-inclusive total from AmountHT and TVA.
func (i *Invoice) ComputeTTC() float64 {
	return i.AmountHT * (1 + i.TVA/100)
}

// TaxAmount returns the TVA portion of the invoice.
func (i *Invoice) TaxAmount() float64 {
	return i.AmountHT * i.TVA / 100
}

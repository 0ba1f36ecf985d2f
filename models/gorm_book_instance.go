package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookInstanceStatus is the availability of a physical copy.
type BookInstanceStatus string

const (
	StatusAvailable   BookInstanceStatus = "Available"
	StatusMaintenance BookInstanceStatus = "Maintenance"
	StatusLoaned      BookInstanceStatus = "Loaned"
	StatusReserved    BookInstanceStatus = "Reserved"
)

// DefaultBookInstanceStatus is applied when a copy is created without a status.
const DefaultBookInstanceStatus = StatusMaintenance

// BookInstanceStatuses lists every representable status in display order.
var BookInstanceStatuses = []BookInstanceStatus{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}

// ErrInvalidStatus is returned on save when a copy carries an unknown status.
var ErrInvalidStatus = errors.New("invalid book instance status")

func (s BookInstanceStatus) Valid() bool {
	for _, known := range BookInstanceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// BookInstance represents a physical copy of a book using GORM.
// It corresponds to the 'book_instances' table.
type BookInstance struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	BookID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"book_id"`
	Imprint   string             `gorm:"not null" json:"imprint"`
	Status    BookInstanceStatus `gorm:"not null;default:Maintenance;index" json:"status"`
	DueBack   datatypes.Date     `gorm:"not null" json:"due_back"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // Belongs to Book
}

// TableName explicitly sets the table name for GORM.
func (BookInstance) TableName() string {
	return "book_instances"
}

func (bi *BookInstance) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	if bi.Status == "" {
		bi.Status = DefaultBookInstanceStatus
	}
	if time.Time(bi.DueBack).IsZero() {
		bi.DueBack = datatypes.Date(time.Now())
	}
	return nil
}

func (bi *BookInstance) BeforeSave(tx *gorm.DB) error {
	if bi.Status != "" && !bi.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, bi.Status)
	}
	return nil
}

func (bi BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID.String()
}

func (bi BookInstance) DueBackFormatted() string {
	return formatDate(&bi.DueBack)
}

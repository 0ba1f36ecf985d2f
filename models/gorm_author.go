package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MediumDateLayout is the display format for dates shown on catalog pages.
const MediumDateLayout = "Jan 2, 2006"

// Author represents a book author using GORM.
// It corresponds to the 'authors' table.
type Author struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName   string          `gorm:"not null" json:"first_name"`
	FamilyName  string          `gorm:"not null;index" json:"family_name"`
	DateOfBirth *datatypes.Date `gorm:"" json:"date_of_birth,omitempty"` // Nullable
	DateOfDeath *datatypes.Date `gorm:"" json:"date_of_death,omitempty"` // Nullable
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Author) TableName() string {
	return "authors"
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Name is "{first} {family}", or empty unless both parts are present.
func (a Author) Name() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", a.FirstName, a.FamilyName)
}

func (a Author) DateOfBirthFormatted() string {
	return formatDate(a.DateOfBirth)
}

func (a Author) DateOfDeathFormatted() string {
	return formatDate(a.DateOfDeath)
}

// Lifespan renders "{birth} - {death}" with missing ends left blank.
func (a Author) Lifespan() string {
	return fmt.Sprintf("%s - %s", a.DateOfBirthFormatted(), a.DateOfDeathFormatted())
}

func (a Author) URL() string {
	return "/catalog/author/" + a.ID.String()
}

func formatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	t := time.Time(*d)
	if t.IsZero() {
		return ""
	}
	return t.Format(MediumDateLayout)
}

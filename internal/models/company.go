package models

import "github.com/google/uuid"

// Company is a portfolio company. Every document belongs to exactly one
// company; the document tree never crosses this boundary.
type Company struct {
	BaseModel
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Website   *string   `json:"website,omitempty" gorm:"type:varchar(255)"`
	Sector    *string   `json:"sector,omitempty" gorm:"type:varchar(100)"`
	CreatedBy uuid.UUID `json:"createdBy" gorm:"type:uuid;not null"`

	Documents []Document `json:"-" gorm:"foreignKey:CompanyID"`
}

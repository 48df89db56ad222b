package models

import "github.com/google/uuid"

type DocumentKind string

const (
	DocumentKindFolder DocumentKind = "folder"
	DocumentKindFile   DocumentKind = "file"
)

// Document is one node of a company's document tree. Kind is fixed at
// creation: a folder never becomes a file and vice versa. The blob-side
// fields (StoragePath, MimeType, SizeBytes, OriginalFileName) are set for
// file rows and nil for folder rows; the service constructors are the only
// writers and maintain that split.
type Document struct {
	BaseModel
	CompanyID        uuid.UUID    `json:"companyID" gorm:"type:uuid;not null;index"`
	Kind             DocumentKind `json:"kind" gorm:"type:varchar(10);not null;index"`
	Name             string       `json:"name" gorm:"type:varchar(255);not null"`
	ParentID         *uuid.UUID   `json:"parentID,omitempty" gorm:"type:uuid;index"`
	StoragePath      *string      `json:"storagePath,omitempty" gorm:"type:text"`
	MimeType         *string      `json:"mimeType,omitempty" gorm:"type:varchar(255)"`
	SizeBytes        *int64       `json:"sizeBytes,omitempty"`
	OriginalFileName *string      `json:"originalFileName,omitempty" gorm:"type:varchar(255)"`
	CreatedBy        uuid.UUID    `json:"createdBy" gorm:"type:uuid;not null"`

	Company Company   `json:"-" gorm:"foreignKey:CompanyID"`
	Parent  *Document `json:"-" gorm:"foreignKey:ParentID"`
}

func (d *Document) IsFolder() bool {
	return d.Kind == DocumentKindFolder
}

// DocumentTreeNode is a Document plus its ordered children. Trees are
// built transiently from the flat document list and never persisted.
type DocumentTreeNode struct {
	Document
	Children []*DocumentTreeNode `json:"children"`
}

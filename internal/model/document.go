package model

import (
	"path/filepath"
	"strings"
	"time"
)

// VehicleDocument records a file stored for a vehicle. The record owns
// the lifecycle of the file at Filepath: created with the file write,
// destroyed with the (best-effort) file deletion.
type VehicleDocument struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	VehicleID    uint      `json:"vehicle_id" gorm:"index;not null"`
	Vehicle      *Vehicle  `json:"vehicle,omitempty"`
	DocumentType string    `json:"document_type" gorm:"type:varchar(50);not null"` // damage_photo, apk_report, etc.
	Filename     string    `json:"filename" gorm:"type:varchar(255);not null"`
	Filepath     string    `json:"-" gorm:"type:varchar(255);not null"`
	Description  string    `json:"description" gorm:"type:text"`
	UploadDate   time.Time `json:"upload_date" gorm:"autoCreateTime"`
}

// FileExtension returns the lower-cased extension of the original filename
func (d *VehicleDocument) FileExtension() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}

// IsImage reports whether the document is an image
func (d *VehicleDocument) IsImage() bool {
	switch d.FileExtension() {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
		return true
	}
	return false
}

// IsPDF reports whether the document is a PDF
func (d *VehicleDocument) IsPDF() bool {
	return d.FileExtension() == ".pdf"
}

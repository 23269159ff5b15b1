package models

import "time"

// Photo is the media record. StoragePath is the authoritative physical
// location and moves when the photo is locked into the vault. Trash is a
// visibility flag only; the bytes stay where they are until a purge.
//
// IsDeleted/DeletedAt are explicit columns instead of gorm.DeletedAt because
// trashed photos must remain readable and downloadable.
type Photo struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	FileName       string     `gorm:"type:varchar(255);not null" json:"file_name"`
	StoragePath    string     `gorm:"type:varchar(1000);not null" json:"storage_path"`
	FileSize       int64      `gorm:"not null" json:"file_size"`
	Description    string     `gorm:"type:varchar(1000)" json:"description"`
	Tags           string     `gorm:"type:varchar(500)" json:"tags"`
	IsDeleted      bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	IsEncrypted    bool       `gorm:"not null;default:false" json:"is_encrypted"`
	EncryptionSalt string     `gorm:"type:varchar(32)" json:"-"`

	// EXIF metadata, unset when extraction fails or yields nothing.
	DateTaken    *time.Time `gorm:"index" json:"date_taken,omitempty"`
	CameraMake   string     `gorm:"type:varchar(100)" json:"camera_make,omitempty"`
	CameraModel  string     `gorm:"type:varchar(100)" json:"camera_model,omitempty"`
	FocalLength  *float64   `json:"focal_length,omitempty"`
	ISO          *float64   `json:"iso,omitempty"`
	ExposureTime *float64   `json:"exposure_time,omitempty"`
	Aperture     *float64   `json:"aperture,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

// UserStorage is the per-owner quota ledger: one row per user, mutated only
// through atomic deltas (or a reconcile overwrite). Both counters must stay
// non-negative.
type UserStorage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	RootPath   string    `gorm:"type:varchar(1000);not null" json:"root_path"`
	FileCount  int64     `gorm:"not null;default:0" json:"file_count"`
	TotalBytes int64     `gorm:"not null;default:0" json:"total_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

func (UserStorage) TableName() string {
	return "user_storages"
}

package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/gabrielbaute/octopus-photos/models"

	"gorm.io/gorm"
)

type GormPhotoRepository struct {
	db *gorm.DB
}

func NewGormPhotoRepository(db *gorm.DB) *GormPhotoRepository {
	return &GormPhotoRepository{db: db}
}

func (r *GormPhotoRepository) Create(_ context.Context, tx *gorm.DB, photo *models.Photo) error {
	return useTx(r.db, tx).Create(photo).Error
}

func (r *GormPhotoRepository) GetByID(_ context.Context, tx *gorm.DB, photoID string) (models.Photo, error) {
	var photo models.Photo
	err := useTx(r.db, tx).Where("id = ?", photoID).First(&photo).Error
	return photo, err
}

func (r *GormPhotoRepository) List(_ context.Context, tx *gorm.DB, in ListPhotosInput) ([]models.Photo, error) {
	query := useTx(r.db, tx).Model(&models.Photo{}).
		Where("user_id = ? AND is_deleted = ?", in.UserID, in.OnlyTrashed)

	sortColumns := map[string]string{
		"created_at": "created_at",
		"file_name":  "file_name",
		"date_taken": "date_taken",
		"file_size":  "file_size",
	}
	sortCol := sortColumns[in.SortBy]
	if sortCol == "" {
		sortCol = "created_at"
	}
	order := strings.ToUpper(in.Order)
	if order != "ASC" {
		order = "DESC"
	}

	var photos []models.Photo
	err := query.Order(sortCol + " " + order).Offset(in.Offset).Limit(in.Limit).Find(&photos).Error
	return photos, err
}

func (r *GormPhotoRepository) Count(_ context.Context, tx *gorm.DB, userID uint, onlyTrashed bool) (int64, error) {
	var total int64
	err := useTx(r.db, tx).Model(&models.Photo{}).
		Where("user_id = ? AND is_deleted = ?", userID, onlyTrashed).
		Count(&total).Error
	return total, err
}

func (r *GormPhotoRepository) MarkTrashed(_ context.Context, tx *gorm.DB, photoID string, userID uint, deletedAt time.Time) (int64, error) {
	res := useTx(r.db, tx).Model(&models.Photo{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", photoID, userID, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": deletedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *GormPhotoRepository) MarkRestored(_ context.Context, tx *gorm.DB, photoID string, userID uint) (int64, error) {
	res := useTx(r.db, tx).Model(&models.Photo{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", photoID, userID, true).
		Updates(map[string]interface{}{
			"is_deleted": false,
			"deleted_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *GormPhotoRepository) MarkEncrypted(_ context.Context, tx *gorm.DB, photoID string, storagePath string, saltHex string, fileSize int64) (int64, error) {
	res := useTx(r.db, tx).Model(&models.Photo{}).
		Where("id = ? AND is_encrypted = ?", photoID, false).
		Updates(map[string]interface{}{
			"is_encrypted":    true,
			"storage_path":    storagePath,
			"encryption_salt": saltHex,
			"file_size":       fileSize,
		})
	return res.RowsAffected, res.Error
}

// HardDelete removes the record permanently. The returned row count lets the
// caller tie the quota decrement to the record actually being deleted.
func (r *GormPhotoRepository) HardDelete(_ context.Context, tx *gorm.DB, photoID string, userID uint) (int64, error) {
	res := useTx(r.db, tx).Where("id = ? AND user_id = ?", photoID, userID).Delete(&models.Photo{})
	return res.RowsAffected, res.Error
}

func (r *GormPhotoRepository) UpdateByIDAndUser(_ context.Context, tx *gorm.DB, photoID string, userID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Photo{}).
		Where("id = ? AND user_id = ?", photoID, userID).
		Updates(updates).Error
}

func (r *GormPhotoRepository) ListByCalendarDay(_ context.Context, tx *gorm.DB, userID uint, month time.Month, day int) ([]models.Photo, error) {
	var photos []models.Photo
	err := useTx(r.db, tx).
		Where("user_id = ? AND is_deleted = ? AND date_taken IS NOT NULL", userID, false).
		Where("MONTH(date_taken) = ? AND DAY(date_taken) = ?", int(month), day).
		Order("date_taken DESC").
		Find(&photos).Error
	return photos, err
}

func (r *GormPhotoRepository) DeleteByUser(_ context.Context, tx *gorm.DB, userID uint) error {
	return useTx(r.db, tx).Where("user_id = ?", userID).Delete(&models.Photo{}).Error
}

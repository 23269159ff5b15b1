package repositories

import (
	"context"

	"github.com/gabrielbaute/octopus-photos/models"

	"gorm.io/gorm"
)

type GormStorageRepository struct {
	db *gorm.DB
}

func NewGormStorageRepository(db *gorm.DB) *GormStorageRepository {
	return &GormStorageRepository{db: db}
}

func (r *GormStorageRepository) Create(_ context.Context, tx *gorm.DB, storage *models.UserStorage) error {
	return useTx(r.db, tx).Create(storage).Error
}

func (r *GormStorageRepository) GetByUser(_ context.Context, tx *gorm.DB, userID uint) (models.UserStorage, error) {
	var storage models.UserStorage
	err := useTx(r.db, tx).Where("user_id = ?", userID).First(&storage).Error
	return storage, err
}

// ApplyDelta runs as one conditional UPDATE so concurrent deltas never lose
// updates and a negative result is rejected without touching either counter.
func (r *GormStorageRepository) ApplyDelta(_ context.Context, tx *gorm.DB, userID uint, byteDelta int64, fileDelta int64) (int64, error) {
	res := useTx(r.db, tx).Model(&models.UserStorage{}).
		Where("user_id = ? AND file_count + ? >= 0 AND total_bytes + ? >= 0", userID, fileDelta, byteDelta).
		Updates(map[string]interface{}{
			"file_count":  gorm.Expr("file_count + ?", fileDelta),
			"total_bytes": gorm.Expr("total_bytes + ?", byteDelta),
		})
	return res.RowsAffected, res.Error
}

func (r *GormStorageRepository) Overwrite(_ context.Context, tx *gorm.DB, userID uint, totalBytes int64, fileCount int64) error {
	return useTx(r.db, tx).Model(&models.UserStorage{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"file_count":  fileCount,
			"total_bytes": totalBytes,
		}).Error
}

func (r *GormStorageRepository) DeleteByUser(_ context.Context, tx *gorm.DB, userID uint) error {
	return useTx(r.db, tx).Where("user_id = ?", userID).Delete(&models.UserStorage{}).Error
}

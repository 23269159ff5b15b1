package repositories

import (
	"context"

	"github.com/gabrielbaute/octopus-photos/models"

	"gorm.io/gorm"
)

type GormAlbumRepository struct {
	db *gorm.DB
}

func NewGormAlbumRepository(db *gorm.DB) *GormAlbumRepository {
	return &GormAlbumRepository{db: db}
}

func (r *GormAlbumRepository) Create(_ context.Context, tx *gorm.DB, album *models.Album) error {
	return useTx(r.db, tx).Create(album).Error
}

func (r *GormAlbumRepository) GetByIDAndUser(_ context.Context, tx *gorm.DB, albumID string, userID uint, preloadPhotos bool) (models.Album, error) {
	db := useTx(r.db, tx)
	if preloadPhotos {
		db = db.Preload("Photos", "is_deleted = ?", false)
	}
	var album models.Album
	err := db.Where("id = ? AND user_id = ?", albumID, userID).First(&album).Error
	return album, err
}

func (r *GormAlbumRepository) ListByUser(_ context.Context, tx *gorm.DB, userID uint) ([]models.Album, error) {
	var albums []models.Album
	err := useTx(r.db, tx).Where("user_id = ?", userID).Order("created_at DESC").Find(&albums).Error
	return albums, err
}

func (r *GormAlbumRepository) UpdateName(_ context.Context, tx *gorm.DB, albumID string, userID uint, name string) error {
	return useTx(r.db, tx).Model(&models.Album{}).
		Where("id = ? AND user_id = ?", albumID, userID).
		Update("name", name).Error
}

func (r *GormAlbumRepository) DeleteByIDAndUser(_ context.Context, tx *gorm.DB, albumID string, userID uint) error {
	db := useTx(r.db, tx)
	if err := db.Exec("DELETE FROM album_photos WHERE album_id = ?", albumID).Error; err != nil {
		return err
	}
	return db.Where("id = ? AND user_id = ?", albumID, userID).Delete(&models.Album{}).Error
}

func (r *GormAlbumRepository) AddPhoto(_ context.Context, tx *gorm.DB, albumID string, photoID string) error {
	album := models.Album{ID: albumID}
	return useTx(r.db, tx).Model(&album).Association("Photos").Append(&models.Photo{ID: photoID})
}

func (r *GormAlbumRepository) RemovePhoto(_ context.Context, tx *gorm.DB, albumID string, photoID string) error {
	album := models.Album{ID: albumID}
	return useTx(r.db, tx).Model(&album).Association("Photos").Delete(&models.Photo{ID: photoID})
}

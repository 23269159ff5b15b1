package repositories

import (
	"context"
	"time"

	"github.com/gabrielbaute/octopus-photos/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	CountByUsername(ctx context.Context, username string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (models.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, userID uint) error
}

// StorageRepository persists the per-owner quota ledger. ApplyDelta is a
// single conditional UPDATE: it refuses (zero rows) any delta that would drive
// a counter negative, and never applies a partial update.
type StorageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, storage *models.UserStorage) error
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint) (models.UserStorage, error)
	ApplyDelta(ctx context.Context, tx *gorm.DB, userID uint, byteDelta int64, fileDelta int64) (int64, error)
	Overwrite(ctx context.Context, tx *gorm.DB, userID uint, totalBytes int64, fileCount int64) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type ListPhotosInput struct {
	UserID      uint
	OnlyTrashed bool
	SortBy      string
	Order       string
	Offset      int
	Limit       int
}

type PhotoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, photo *models.Photo) error
	GetByID(ctx context.Context, tx *gorm.DB, photoID string) (models.Photo, error)
	List(ctx context.Context, tx *gorm.DB, in ListPhotosInput) ([]models.Photo, error)
	Count(ctx context.Context, tx *gorm.DB, userID uint, onlyTrashed bool) (int64, error)
	// MarkTrashed, MarkRestored and MarkEncrypted are conditional
	// check-and-set updates; the returned count is the number of rows
	// actually transitioned.
	MarkTrashed(ctx context.Context, tx *gorm.DB, photoID string, userID uint, deletedAt time.Time) (int64, error)
	MarkRestored(ctx context.Context, tx *gorm.DB, photoID string, userID uint) (int64, error)
	MarkEncrypted(ctx context.Context, tx *gorm.DB, photoID string, storagePath string, saltHex string, fileSize int64) (int64, error)
	HardDelete(ctx context.Context, tx *gorm.DB, photoID string, userID uint) (int64, error)
	UpdateByIDAndUser(ctx context.Context, tx *gorm.DB, photoID string, userID uint, updates map[string]interface{}) error
	ListByCalendarDay(ctx context.Context, tx *gorm.DB, userID uint, month time.Month, day int) ([]models.Photo, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type AlbumRepository interface {
	Create(ctx context.Context, tx *gorm.DB, album *models.Album) error
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, albumID string, userID uint, preloadPhotos bool) (models.Album, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Album, error)
	UpdateName(ctx context.Context, tx *gorm.DB, albumID string, userID uint, name string) error
	DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, albumID string, userID uint) error
	AddPhoto(ctx context.Context, tx *gorm.DB, albumID string, photoID string) error
	RemovePhoto(ctx context.Context, tx *gorm.DB, albumID string, photoID string) error
}

// VaultAttemptRepository tracks failed vault passphrase attempts per owner so
// the vault service can refuse further unlocks before paying the KDF cost.
type VaultAttemptRepository interface {
	RegisterFailure(ctx context.Context, userID uint, windowSeconds int) (int64, error)
	FailureCount(ctx context.Context, userID uint) (int64, error)
	Clear(ctx context.Context, userID uint) error
}

type Container struct {
	TxManager     TxManager
	Users         UserRepository
	Storages      StorageRepository
	Photos        PhotoRepository
	Albums        AlbumRepository
	VaultAttempts VaultAttemptRepository
}

package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"

	"gorm.io/gorm"
)

type StorageService interface {
	InitUserStorage(ctx context.Context, userID uint) (models.UserStorage, error)
	GetUsage(ctx context.Context, userID uint) (models.UserStorage, error)
	SyncWithDisk(ctx context.Context, userID uint) (models.UserStorage, error)
	DeleteAllUserData(ctx context.Context, userID uint) error
}

type storageService struct {
	txManager TxManager
	storages  repositories.StorageRepository
	photos    repositories.PhotoRepository
	resolver  pathResolver
}

func NewStorageService(
	txManager TxManager,
	storages repositories.StorageRepository,
	photos repositories.PhotoRepository,
	basePath string,
) StorageService {
	return &storageService{
		txManager: txManager,
		storages:  storages,
		photos:    photos,
		resolver:  newPathResolver(basePath),
	}
}

func (s *storageService) InitUserStorage(ctx context.Context, userID uint) (models.UserStorage, error) {
	if _, err := s.storages.GetByUser(ctx, nil, userID); err == nil {
		return models.UserStorage{}, newAppError(http.StatusConflict, "storage already initialized", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserStorage{}, newAppError(http.StatusInternalServerError, "failed to check storage record", err)
	}

	for _, bucket := range []Bucket{BucketPhotos, BucketThumbnails} {
		if _, err := s.resolver.resolve(userID, bucket); err != nil {
			return models.UserStorage{}, err
		}
	}

	storage := models.UserStorage{
		UserID:   userID,
		RootPath: s.resolver.userRoot(userID),
	}
	if err := s.storages.Create(ctx, nil, &storage); err != nil {
		return models.UserStorage{}, newAppError(http.StatusInternalServerError, "failed to create storage record", err)
	}

	logger.Infof("storage initialized for user %d at %s", userID, storage.RootPath)
	return storage, nil
}

func (s *storageService) GetUsage(ctx context.Context, userID uint) (models.UserStorage, error) {
	storage, err := s.storages.GetByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UserStorage{}, newAppError(http.StatusNotFound, "storage record not found", nil)
		}
		return models.UserStorage{}, newAppError(http.StatusInternalServerError, "failed to read storage record", err)
	}
	return storage, nil
}

// SyncWithDisk recomputes the ledger from disk. Locked photos live in the
// vault bucket and count with their ciphertext size, so both the plain-photos
// and vault-photos directories are scanned. It is the repair path after a
// crash left the counters out of step with disk.
func (s *storageService) SyncWithDisk(ctx context.Context, userID uint) (models.UserStorage, error) {
	storage, err := s.GetUsage(ctx, userID)
	if err != nil {
		return models.UserStorage{}, err
	}

	allowed := allowedExtensionSet()
	var trueBytes int64
	var trueCount int64

	photosDir, err := s.resolver.resolve(userID, BucketPhotos)
	if err != nil {
		return models.UserStorage{}, err
	}
	entries, err := os.ReadDir(photosDir)
	if err != nil {
		return models.UserStorage{}, newAppError(http.StatusInternalServerError, "failed to scan photos directory", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		trueCount++
		trueBytes += info.Size()
	}

	vaultDir, err := s.resolver.resolve(userID, BucketVaultPhotos)
	if err != nil {
		return models.UserStorage{}, err
	}
	vaultEntries, err := os.ReadDir(vaultDir)
	if err != nil {
		return models.UserStorage{}, newAppError(http.StatusInternalServerError, "failed to scan vault directory", err)
	}
	for _, entry := range vaultEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), vaultBlobSuffix) {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		trueCount++
		trueBytes += info.Size()
	}

	if trueCount != storage.FileCount || trueBytes != storage.TotalBytes {
		logger.Warnf("storage drift for user %d: ledger {files:%d, bytes:%d}, disk {files:%d, bytes:%d}",
			userID, storage.FileCount, storage.TotalBytes, trueCount, trueBytes)
	}

	if err := s.storages.Overwrite(ctx, nil, userID, trueBytes, trueCount); err != nil {
		return models.UserStorage{}, newAppError(http.StatusInternalServerError, "failed to reconcile storage record", err)
	}

	storage.FileCount = trueCount
	storage.TotalBytes = trueBytes
	return storage, nil
}

func (s *storageService) DeleteAllUserData(ctx context.Context, userID uint) error {
	root := s.resolver.userRoot(userID)
	if err := os.RemoveAll(root); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete user directory", err)
	}
	logger.Warnf("all physical data for user %d has been deleted", userID)

	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.photos.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.storages.DeleteByUser(ctx, tx, userID)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete storage records", err)
	}
	return nil
}

// applyQuotaDelta applies a signed ledger delta inside the caller's
// transaction. Zero affected rows means either a missing ledger row or a
// delta that would drive a counter negative; both abort the transaction.
func applyQuotaDelta(ctx context.Context, tx *gorm.DB, storages repositories.StorageRepository, userID uint, byteDelta, fileDelta int64) error {
	rows, err := storages.ApplyDelta(ctx, tx, userID, byteDelta, fileDelta)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := storages.GetByUser(ctx, tx, userID); getErr != nil {
			return newAppError(http.StatusNotFound, "storage record not found", getErr)
		}
		return newAppError(http.StatusInternalServerError, "quota delta would drive counters negative", nil)
	}
	return nil
}

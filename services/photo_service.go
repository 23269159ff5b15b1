package services

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabrielbaute/octopus-photos/config"
	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadPhotoInput struct {
	ActorID     uint
	FileName    string
	Reader      io.Reader
	Size        int64
	Description string
	Tags        string
}

type ListPhotosQuery struct {
	ActorID     uint
	OnlyTrashed bool
	SortBy      string
	Order       string
	Page        int
	PageSize    int
}

type UpdatePhotoInput struct {
	ActorID     uint
	PhotoID     string
	Description *string
	Tags        *string
}

// DownloadInfo points the handler at the plaintext bytes to stream back.
type DownloadInfo struct {
	AbsolutePath string
	FileName     string
	MimeType     string
}

type PhotoService interface {
	Upload(ctx context.Context, in UploadPhotoInput) (models.Photo, error)
	Get(ctx context.Context, actorID uint, photoID string) (models.Photo, error)
	List(ctx context.Context, q ListPhotosQuery) ([]models.Photo, int64, error)
	GetDownloadInfo(ctx context.Context, actorID uint, photoID string) (DownloadInfo, error)
	GetThumbnailInfo(ctx context.Context, actorID uint, photoID string) (DownloadInfo, error)
	UpdateDetails(ctx context.Context, in UpdatePhotoInput) error
	Trash(ctx context.Context, actorID uint, photoID string) error
	Restore(ctx context.Context, actorID uint, photoID string) error
	Purge(ctx context.Context, actorID uint, photoID string) error
}

type photoService struct {
	txManager  TxManager
	photos     repositories.PhotoRepository
	storages   repositories.StorageRepository
	authorizer Authorizer
	metadata   MetadataExtractor
	resolver   pathResolver
}

func NewPhotoService(
	txManager TxManager,
	photos repositories.PhotoRepository,
	storages repositories.StorageRepository,
	authorizer Authorizer,
	metadata MetadataExtractor,
	basePath string,
) PhotoService {
	return &photoService{
		txManager:  txManager,
		photos:     photos,
		storages:   storages,
		authorizer: authorizer,
		metadata:   metadata,
		resolver:   newPathResolver(basePath),
	}
}

// Upload writes the bytes first and records the photo plus its quota delta in
// one transaction afterwards. If anything fails past the first disk write,
// the deferred cleanup removes every file this call created, so a failed
// upload never leaks bytes or ledger counts.
func (s *photoService) Upload(ctx context.Context, in UploadPhotoInput) (models.Photo, error) {
	fileName := sanitizeFilename(in.FileName)
	if fileName == "" || fileName == "." {
		return models.Photo{}, newAppError(http.StatusBadRequest, "file name is required", nil)
	}
	if !isFileExtensionAllowed(fileName) {
		return models.Photo{}, newAppError(http.StatusBadRequest, "file type not allowed", nil)
	}
	if in.Size > config.AppConfig.Storage.MaxFileSize {
		return models.Photo{}, newAppErrorWithData(http.StatusBadRequest, "file exceeds maximum allowed size",
			map[string]interface{}{"max_file_size": config.AppConfig.Storage.MaxFileSize}, nil)
	}

	photosDir, err := s.resolver.resolve(in.ActorID, BucketPhotos)
	if err != nil {
		return models.Photo{}, err
	}

	photoID := uuid.New().String()
	ext := filepath.Ext(fileName)
	photoPath := filepath.Join(photosDir, photoID+ext)

	written, err := writeFile(photoPath, in.Reader)
	if err != nil {
		return models.Photo{}, newAppError(http.StatusInternalServerError, "failed to save file", err)
	}

	committed := false
	var thumbPath string
	defer func() {
		if committed {
			return
		}
		removeIfExists(photoPath)
		if thumbPath != "" {
			removeIfExists(thumbPath)
		}
	}()

	if written > config.AppConfig.Storage.MaxFileSize {
		return models.Photo{}, newAppErrorWithData(http.StatusBadRequest, "file exceeds maximum allowed size",
			map[string]interface{}{"max_file_size": config.AppConfig.Storage.MaxFileSize}, nil)
	}

	thumbPath, err = s.resolver.thumbnailPath(in.ActorID, photoID)
	if err != nil {
		return models.Photo{}, err
	}
	if thumbErr := GenerateThumbnail(photoPath, thumbPath); thumbErr != nil {
		logger.Warnf("thumbnail generation failed for photo %s: %v", photoID, thumbErr)
		thumbPath = ""
	}

	photo := models.Photo{
		ID:          photoID,
		UserID:      in.ActorID,
		FileName:    fileName,
		StoragePath: photoPath,
		FileSize:    written,
		Description: in.Description,
		Tags:        in.Tags,
	}
	s.metadata.Extract(photoPath, &photo)

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.photos.Create(ctx, tx, &photo); err != nil {
			return err
		}
		return applyQuotaDelta(ctx, tx, s.storages, in.ActorID, written, 1)
	})
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return models.Photo{}, appErr
		}
		return models.Photo{}, newAppError(http.StatusInternalServerError, "failed to record photo", err)
	}

	committed = true
	logger.Infof("photo %s uploaded by user %d (%d bytes)", photoID, in.ActorID, written)
	return photo, nil
}

func (s *photoService) Get(ctx context.Context, actorID uint, photoID string) (models.Photo, error) {
	return s.getAuthorized(ctx, actorID, photoID)
}

func (s *photoService) List(ctx context.Context, q ListPhotosQuery) ([]models.Photo, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}

	in := repositories.ListPhotosInput{
		UserID:      q.ActorID,
		OnlyTrashed: q.OnlyTrashed,
		SortBy:      q.SortBy,
		Order:       q.Order,
		Offset:      (q.Page - 1) * q.PageSize,
		Limit:       q.PageSize,
	}
	photos, err := s.photos.List(ctx, nil, in)
	if err != nil {
		return nil, 0, newAppError(http.StatusInternalServerError, "failed to list photos", err)
	}
	total, err := s.photos.Count(ctx, nil, q.ActorID, q.OnlyTrashed)
	if err != nil {
		return nil, 0, newAppError(http.StatusInternalServerError, "failed to count photos", err)
	}
	return photos, total, nil
}

func (s *photoService) GetDownloadInfo(ctx context.Context, actorID uint, photoID string) (DownloadInfo, error) {
	photo, err := s.getAuthorized(ctx, actorID, photoID)
	if err != nil {
		return DownloadInfo{}, err
	}
	if photo.IsEncrypted {
		return DownloadInfo{}, newAppError(http.StatusForbidden, "photo is locked in the vault", nil)
	}
	if _, err := os.Stat(photo.StoragePath); err != nil {
		return DownloadInfo{}, newAppError(http.StatusNotFound, "photo file not found", err)
	}
	return DownloadInfo{
		AbsolutePath: photo.StoragePath,
		FileName:     photo.FileName,
		MimeType:     getMimeType(filepath.Ext(photo.FileName)),
	}, nil
}

func (s *photoService) GetThumbnailInfo(ctx context.Context, actorID uint, photoID string) (DownloadInfo, error) {
	photo, err := s.getAuthorized(ctx, actorID, photoID)
	if err != nil {
		return DownloadInfo{}, err
	}
	if photo.IsEncrypted {
		return DownloadInfo{}, newAppError(http.StatusForbidden, "photo is locked in the vault", nil)
	}
	thumbPath, err := s.resolver.thumbnailPath(photo.UserID, photo.ID)
	if err != nil {
		return DownloadInfo{}, err
	}
	if _, err := os.Stat(thumbPath); err != nil {
		return DownloadInfo{}, newAppError(http.StatusNotFound, "thumbnail not found", err)
	}
	return DownloadInfo{
		AbsolutePath: thumbPath,
		FileName:     photo.ID + thumbnailSuffix,
		MimeType:     "image/jpeg",
	}, nil
}

func (s *photoService) UpdateDetails(ctx context.Context, in UpdatePhotoInput) error {
	photo, err := s.getAuthorized(ctx, in.ActorID, in.PhotoID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Tags != nil {
		updates["tags"] = *in.Tags
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.photos.UpdateByIDAndUser(ctx, nil, photo.ID, photo.UserID, updates); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to update photo", err)
	}
	return nil
}

// Trash flips the visibility flag only. The bytes stay on disk and the quota
// ledger does not move; repeated calls are no-ops.
func (s *photoService) Trash(ctx context.Context, actorID uint, photoID string) error {
	photo, err := s.getAuthorized(ctx, actorID, photoID)
	if err != nil {
		return err
	}
	// Zero rows means it was already trashed, possibly concurrently; either
	// way the desired state holds.
	if _, err := s.photos.MarkTrashed(ctx, nil, photo.ID, photo.UserID, time.Now()); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to trash photo", err)
	}
	return nil
}

func (s *photoService) Restore(ctx context.Context, actorID uint, photoID string) error {
	photo, err := s.getAuthorized(ctx, actorID, photoID)
	if err != nil {
		return err
	}
	if _, err := s.photos.MarkRestored(ctx, nil, photo.ID, photo.UserID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to restore photo", err)
	}
	return nil
}

// Purge permanently removes a photo, trashed or not. Disk deletion happens
// before the record delete, so a crash in between leaves an orphan file that a
// later reconcile can account for, never a record pointing at bytes that are
// gone. The conditional record delete makes the quota delta apply at most once
// under concurrent purges.
func (s *photoService) Purge(ctx context.Context, actorID uint, photoID string) error {
	photo, err := s.getAuthorized(ctx, actorID, photoID)
	if err != nil {
		return err
	}

	if err := removeIfExists(photo.StoragePath); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete photo file", err)
	}
	if thumbPath, pathErr := s.resolver.thumbnailPath(photo.UserID, photo.ID); pathErr == nil {
		if err := removeIfExists(thumbPath); err != nil {
			logger.Warnf("failed to delete thumbnail of photo %s: %v", photo.ID, err)
		}
	}
	if photo.IsEncrypted {
		if err := s.removeVaultBlobs(photo.UserID, photo.ID); err != nil {
			return err
		}
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := s.photos.HardDelete(ctx, tx, photo.ID, photo.UserID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return newAppError(http.StatusNotFound, "photo not found", nil)
		}
		return applyQuotaDelta(ctx, tx, s.storages, photo.UserID, -photo.FileSize, -1)
	})
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return newAppError(http.StatusInternalServerError, "failed to purge photo", err)
	}

	logger.Infof("photo %s purged for user %d", photo.ID, photo.UserID)
	return nil
}

func (s *photoService) removeVaultBlobs(userID uint, photoID string) error {
	blobPath, err := s.resolver.vaultPhotoPath(userID, photoID)
	if err != nil {
		return err
	}
	if err := removeIfExists(blobPath); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete vault blob", err)
	}
	thumbBlobPath, err := s.resolver.vaultThumbnailPath(userID, photoID)
	if err != nil {
		return err
	}
	if err := removeIfExists(thumbBlobPath); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete vault thumbnail blob", err)
	}
	return nil
}

func (s *photoService) getAuthorized(ctx context.Context, actorID uint, photoID string) (models.Photo, error) {
	return loadAuthorizedPhoto(ctx, s.photos, s.authorizer, actorID, photoID)
}

func loadAuthorizedPhoto(ctx context.Context, photos repositories.PhotoRepository, authorizer Authorizer, actorID uint, photoID string) (models.Photo, error) {
	photo, err := photos.GetByID(ctx, nil, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Photo{}, newAppError(http.StatusNotFound, "photo not found", nil)
		}
		return models.Photo{}, newAppError(http.StatusInternalServerError, "failed to read photo", err)
	}
	if err := authorizer.CanAccessOwner(ctx, actorID, photo.UserID); err != nil {
		return models.Photo{}, err
	}
	return photo, nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		removeIfExists(path)
		return 0, err
	}
	return written, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

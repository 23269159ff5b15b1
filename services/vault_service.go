package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabrielbaute/octopus-photos/config"
	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"

	"gorm.io/gorm"
)

// VaultStream carries decrypted bytes held in memory only; plaintext is never
// written to disk while a photo stays locked.
type VaultStream struct {
	Reader   io.Reader
	Size     int64
	FileName string
	MimeType string
}

// VaultService moves photos into the encrypted tier and streams them back
// out. There is deliberately no operation that writes decrypted bytes back to
// plain storage; every read re-derives the key and re-decrypts.
type VaultService interface {
	Lock(ctx context.Context, actorID uint, photoID string, passphrase string) error
	Unlock(ctx context.Context, actorID uint, photoID string, passphrase string) (VaultStream, error)
	UnlockThumbnail(ctx context.Context, actorID uint, photoID string, passphrase string) (VaultStream, error)
}

type vaultService struct {
	txManager  TxManager
	photos     repositories.PhotoRepository
	storages   repositories.StorageRepository
	attempts   repositories.VaultAttemptRepository
	authorizer Authorizer
	resolver   pathResolver
}

func NewVaultService(
	txManager TxManager,
	photos repositories.PhotoRepository,
	storages repositories.StorageRepository,
	attempts repositories.VaultAttemptRepository,
	authorizer Authorizer,
	basePath string,
) VaultService {
	return &vaultService{
		txManager:  txManager,
		photos:     photos,
		storages:   storages,
		attempts:   attempts,
		authorizer: authorizer,
		resolver:   newPathResolver(basePath),
	}
}

// Lock encrypts a photo and its thumbnail into the vault. The ciphertext is
// fully written and the record committed before any plaintext is removed, so
// a crash at any point leaves at least one readable copy of the bytes.
func (s *vaultService) Lock(ctx context.Context, actorID uint, photoID string, passphrase string) error {
	if passphrase == "" {
		return newAppError(http.StatusBadRequest, "passphrase is required", nil)
	}

	photo, err := loadAuthorizedPhoto(ctx, s.photos, s.authorizer, actorID, photoID)
	if err != nil {
		return err
	}
	if photo.IsEncrypted {
		return newAppError(http.StatusConflict, "photo is already locked", nil)
	}

	plaintext, err := os.ReadFile(photo.StoragePath)
	if err != nil {
		return newAppError(http.StatusNotFound, "photo file not found", err)
	}

	salt, err := newVaultSalt()
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to generate salt", err)
	}
	key := deriveVaultKey(passphrase, salt)

	blob, err := sealBlob(key, plaintext)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to encrypt photo", err)
	}
	blobPath, err := s.resolver.vaultPhotoPath(photo.UserID, photo.ID)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		removeIfExists(blobPath)
		if thumbBlobPath, pathErr := s.resolver.vaultThumbnailPath(photo.UserID, photo.ID); pathErr == nil {
			removeIfExists(thumbBlobPath)
		}
	}()

	if err := os.WriteFile(blobPath, blob, 0o600); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to write vault blob", err)
	}

	// The thumbnail shares the photo's salt; each blob still gets its own
	// nonce from sealBlob. A missing thumbnail is fine, but a thumbnail we
	// cannot read must fail the lock rather than stay behind in plaintext.
	thumbPath, err := s.resolver.thumbnailPath(photo.UserID, photo.ID)
	if err != nil {
		return err
	}
	hasThumb := false
	thumbPlain, readErr := os.ReadFile(thumbPath)
	if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
		return newAppError(http.StatusInternalServerError, "failed to read thumbnail", readErr)
	}
	if readErr == nil {
		thumbBlob, sealErr := sealBlob(key, thumbPlain)
		if sealErr != nil {
			return newAppError(http.StatusInternalServerError, "failed to encrypt thumbnail", sealErr)
		}
		thumbBlobPath, pathErr := s.resolver.vaultThumbnailPath(photo.UserID, photo.ID)
		if pathErr != nil {
			return pathErr
		}
		if writeErr := os.WriteFile(thumbBlobPath, thumbBlob, 0o600); writeErr != nil {
			return newAppError(http.StatusInternalServerError, "failed to write vault thumbnail blob", writeErr)
		}
		hasThumb = true
	}

	// The conditional record update ties the overhead delta to this lock
	// actually winning: if the record was purged or locked concurrently
	// since we read it, zero rows abort the transaction and the deferred
	// cleanup drops the blobs we just wrote.
	blobSize := int64(len(blob))
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := s.photos.MarkEncrypted(ctx, tx, photo.ID, blobPath, hex.EncodeToString(salt), blobSize)
		if err != nil {
			return err
		}
		if rows == 0 {
			return newAppError(http.StatusNotFound, "photo not found", nil)
		}
		return applyQuotaDelta(ctx, tx, s.storages, photo.UserID, blobSize-photo.FileSize, 0)
	})
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return newAppError(http.StatusInternalServerError, "failed to record vault lock", err)
	}
	committed = true

	if err := removeIfExists(photo.StoragePath); err != nil {
		logger.Warnf("failed to remove plaintext of locked photo %s: %v", photo.ID, err)
	}
	if hasThumb {
		if err := removeIfExists(thumbPath); err != nil {
			logger.Warnf("failed to remove plaintext thumbnail of locked photo %s: %v", photo.ID, err)
		}
	}

	logger.Infof("photo %s locked into vault for user %d", photo.ID, photo.UserID)
	return nil
}

func (s *vaultService) Unlock(ctx context.Context, actorID uint, photoID string, passphrase string) (VaultStream, error) {
	photo, plaintext, err := s.decryptLocked(ctx, actorID, photoID, passphrase, false)
	if err != nil {
		return VaultStream{}, err
	}
	return VaultStream{
		Reader:   bytes.NewReader(plaintext),
		Size:     int64(len(plaintext)),
		FileName: photo.FileName,
		MimeType: getMimeType(filepath.Ext(photo.FileName)),
	}, nil
}

func (s *vaultService) UnlockThumbnail(ctx context.Context, actorID uint, photoID string, passphrase string) (VaultStream, error) {
	photo, plaintext, err := s.decryptLocked(ctx, actorID, photoID, passphrase, true)
	if err != nil {
		return VaultStream{}, err
	}
	return VaultStream{
		Reader:   bytes.NewReader(plaintext),
		Size:     int64(len(plaintext)),
		FileName: photo.ID + thumbnailSuffix,
		MimeType: "image/jpeg",
	}, nil
}

// decryptLocked is the shared unlock path. The failure throttle is consulted
// before the key derivation cost is paid, and every decryption failure gets
// the same response regardless of cause, so callers learn nothing about why
// an attempt was rejected.
func (s *vaultService) decryptLocked(ctx context.Context, actorID uint, photoID string, passphrase string, thumbnail bool) (models.Photo, []byte, error) {
	photo, err := loadAuthorizedPhoto(ctx, s.photos, s.authorizer, actorID, photoID)
	if err != nil {
		return models.Photo{}, nil, err
	}
	if !photo.IsEncrypted {
		return models.Photo{}, nil, newAppError(http.StatusBadRequest, "photo is not locked", nil)
	}

	failures, err := s.attempts.FailureCount(ctx, photo.UserID)
	if err != nil {
		logger.Warnf("failed to read vault failure count for user %d: %v", photo.UserID, err)
	}
	if failures >= int64(config.AppConfig.Vault.MaxUnlockFailures) {
		return models.Photo{}, nil, newAppError(http.StatusForbidden, "too many failed attempts, try again later", nil)
	}

	salt, err := hex.DecodeString(photo.EncryptionSalt)
	if err != nil || len(salt) != vaultSaltSize {
		return models.Photo{}, nil, newAppError(http.StatusInternalServerError, "corrupt encryption salt", err)
	}

	blobPath := photo.StoragePath
	if thumbnail {
		blobPath, err = s.resolver.vaultThumbnailPath(photo.UserID, photo.ID)
		if err != nil {
			return models.Photo{}, nil, err
		}
	}
	blob, err := os.ReadFile(blobPath)
	if err != nil {
		return models.Photo{}, nil, newAppError(http.StatusNotFound, "vault blob not found", err)
	}

	plaintext, err := openBlob(deriveVaultKey(passphrase, salt), blob)
	if err != nil {
		if _, regErr := s.attempts.RegisterFailure(ctx, photo.UserID, config.AppConfig.Vault.FailureWindowSecs); regErr != nil {
			logger.Warnf("failed to register vault failure for user %d: %v", photo.UserID, regErr)
		}
		return models.Photo{}, nil, newAppError(http.StatusForbidden, "vault access denied", nil)
	}

	if err := s.attempts.Clear(ctx, photo.UserID); err != nil {
		logger.Warnf("failed to clear vault failures for user %d: %v", photo.UserID, err)
	}
	return photo, plaintext, nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gabrielbaute/octopus-photos/models"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestPhotoService(t *testing.T) (PhotoService, *fakePhotoRepo, *fakeStorageRepo, *fakeTxManager) {
	t.Helper()
	basePath := setupTestConfig(t)
	photos := newFakePhotoRepo()
	storages := newFakeStorageRepo()
	storages.records[1] = &models.UserStorage{UserID: 1}
	tx := &fakeTxManager{}
	svc := NewPhotoService(tx, photos, storages, allowAllAuthorizer{}, &fakeMetadataExtractor{}, basePath)
	return svc, photos, storages, tx
}

func appErrCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.HTTPCode
}

func TestUploadPhoto(t *testing.T) {
	svc, photos, storages, _ := newTestPhotoService(t)
	data := tinyPNG(t)

	photo, err := svc.Upload(context.Background(), UploadPhotoInput{
		ActorID:  1,
		FileName: "holiday.png",
		Reader:   bytes.NewReader(data),
		Size:     int64(len(data)),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if _, err := os.Stat(photo.StoragePath); err != nil {
		t.Fatalf("uploaded file missing on disk: %v", err)
	}
	if _, ok := photos.photos[photo.ID]; !ok {
		t.Fatal("photo record not created")
	}

	ledger := storages.records[1]
	if ledger.FileCount != 1 || ledger.TotalBytes != int64(len(data)) {
		t.Fatalf("ledger not updated, got files=%d bytes=%d", ledger.FileCount, ledger.TotalBytes)
	}
}

func TestUploadRunsMetadataExtractor(t *testing.T) {
	basePath := setupTestConfig(t)
	photos := newFakePhotoRepo()
	storages := newFakeStorageRepo()
	storages.records[1] = &models.UserStorage{UserID: 1}
	extractor := &fakeMetadataExtractor{cameraMake: "Acme", cameraModel: "Shooter 9"}
	svc := NewPhotoService(&fakeTxManager{}, photos, storages, allowAllAuthorizer{}, extractor, basePath)
	data := tinyPNG(t)

	photo, err := svc.Upload(context.Background(), UploadPhotoInput{
		ActorID:  1,
		FileName: "holiday.png",
		Reader:   bytes.NewReader(data),
		Size:     int64(len(data)),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if extractor.lastPath != photo.StoragePath {
		t.Fatalf("extractor ran against %q, want %q", extractor.lastPath, photo.StoragePath)
	}
	stored := photos.photos[photo.ID]
	if stored.CameraMake != "Acme" || stored.CameraModel != "Shooter 9" {
		t.Fatalf("extracted metadata not persisted: make=%q model=%q", stored.CameraMake, stored.CameraModel)
	}
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	svc, _, storages, _ := newTestPhotoService(t)

	_, err := svc.Upload(context.Background(), UploadPhotoInput{
		ActorID:  1,
		FileName: "movie.gif",
		Reader:   bytes.NewReader([]byte("not an image")),
		Size:     12,
	})
	if code := appErrCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if storages.records[1].FileCount != 0 {
		t.Fatal("ledger moved for rejected upload")
	}
}

func TestUploadCleansUpOnRecordFailure(t *testing.T) {
	basePath := setupTestConfig(t)
	photos := newFakePhotoRepo()
	storages := newFakeStorageRepo()
	storages.records[1] = &models.UserStorage{UserID: 1}
	tx := &fakeTxManager{failWith: errors.New("db down")}
	svc := NewPhotoService(tx, photos, storages, allowAllAuthorizer{}, &fakeMetadataExtractor{}, basePath)
	data := tinyPNG(t)

	_, err := svc.Upload(context.Background(), UploadPhotoInput{
		ActorID:  1,
		FileName: "holiday.png",
		Reader:   bytes.NewReader(data),
		Size:     int64(len(data)),
	})
	if err == nil {
		t.Fatal("expected upload to fail")
	}

	for _, bucket := range []Bucket{BucketPhotos, BucketThumbnails} {
		dir := filepath.Join(basePath, "1", filepath.FromSlash(string(bucket)))
		entries, readErr := os.ReadDir(dir)
		if readErr != nil {
			continue
		}
		if len(entries) != 0 {
			t.Fatalf("failed upload left %d files in %s", len(entries), bucket)
		}
	}
	if storages.records[1].FileCount != 0 || storages.records[1].TotalBytes != 0 {
		t.Fatal("ledger moved for failed upload")
	}
}

func seedPhoto(t *testing.T, photos *fakePhotoRepo, basePath string, userID uint, data []byte) models.Photo {
	t.Helper()
	resolver := newPathResolver(basePath)
	dir, err := resolver.resolve(userID, BucketPhotos)
	if err != nil {
		t.Fatalf("resolve photos dir: %v", err)
	}
	path := filepath.Join(dir, "seed-photo.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write seed photo: %v", err)
	}
	photo := models.Photo{
		ID:          "seed-photo",
		UserID:      userID,
		FileName:    "seed.png",
		StoragePath: path,
		FileSize:    int64(len(data)),
	}
	photos.photos[photo.ID] = &photo
	return photo
}

func TestTrashAndRestoreLeaveLedgerAlone(t *testing.T) {
	basePath := setupTestConfig(t)
	photos := newFakePhotoRepo()
	storages := newFakeStorageRepo()
	storages.records[1] = &models.UserStorage{UserID: 1, FileCount: 1, TotalBytes: 10}
	svc := NewPhotoService(&fakeTxManager{}, photos, storages, allowAllAuthorizer{}, &fakeMetadataExtractor{}, basePath)

	photo := seedPhoto(t, photos, basePath, 1, []byte("0123456789"))
	ctx := context.Background()

	if err := svc.Trash(ctx, 1, photo.ID); err != nil {
		t.Fatalf("trash failed: %v", err)
	}
	if !photos.photos[photo.ID].IsDeleted {
		t.Fatal("photo not marked trashed")
	}
	if _, err := os.Stat(photo.StoragePath); err != nil {
		t.Fatal("trash must not touch the bytes")
	}
	// Trashing again is a no-op.
	if err := svc.Trash(ctx, 1, photo.ID); err != nil {
		t.Fatalf("second trash failed: %v", err)
	}

	if err := svc.Restore(ctx, 1, photo.ID); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if photos.photos[photo.ID].IsDeleted {
		t.Fatal("photo still trashed after restore")
	}
	if err := svc.Restore(ctx, 1, photo.ID); err != nil {
		t.Fatalf("restore of non-trashed photo must be a no-op, got %v", err)
	}

	ledger := storages.records[1]
	if ledger.FileCount != 1 || ledger.TotalBytes != 10 {
		t.Fatalf("ledger moved across trash/restore: files=%d bytes=%d", ledger.FileCount, ledger.TotalBytes)
	}
}

func TestPurge(t *testing.T) {
	basePath := setupTestConfig(t)
	photos := newFakePhotoRepo()
	storages := newFakeStorageRepo()
	storages.records[1] = &models.UserStorage{UserID: 1, FileCount: 1, TotalBytes: 10}
	svc := NewPhotoService(&fakeTxManager{}, photos, storages, allowAllAuthorizer{}, &fakeMetadataExtractor{}, basePath)

	photo := seedPhoto(t, photos, basePath, 1, []byte("0123456789"))
	ctx := context.Background()

	// Purge works from the active state as well as from the trash.
	if err := svc.Purge(ctx, 1, photo.ID); err != nil {
		t.Fatalf("purge failed: %v", err)
	}

	if _, err := os.Stat(photo.StoragePath); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("purged file still on disk")
	}
	if _, ok := photos.photos[photo.ID]; ok {
		t.Fatal("purged record still present")
	}
	ledger := storages.records[1]
	if ledger.FileCount != 0 || ledger.TotalBytes != 0 {
		t.Fatalf("ledger not released: files=%d bytes=%d", ledger.FileCount, ledger.TotalBytes)
	}

	if err := svc.Purge(ctx, 1, photo.ID); appErrCode(t, err) != http.StatusNotFound {
		t.Fatal("second purge must report not found")
	}
}

func TestDownloadLockedPhotoRefused(t *testing.T) {
	basePath := setupTestConfig(t)
	photos := newFakePhotoRepo()
	storages := newFakeStorageRepo()
	storages.records[1] = &models.UserStorage{UserID: 1}
	svc := NewPhotoService(&fakeTxManager{}, photos, storages, allowAllAuthorizer{}, &fakeMetadataExtractor{}, basePath)

	photo := seedPhoto(t, photos, basePath, 1, []byte("0123456789"))
	photos.photos[photo.ID].IsEncrypted = true

	_, err := svc.GetDownloadInfo(context.Background(), 1, photo.ID)
	if appErrCode(t, err) != http.StatusForbidden {
		t.Fatal("download of a locked photo must be forbidden")
	}
}

package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/gabrielbaute/octopus-photos/config"
	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"

	"gorm.io/gorm"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	basePath := t.TempDir()
	config.AppConfig = &config.Config{
		Storage: config.StorageConfig{
			BasePath:          basePath,
			MaxFileSize:       10 * 1024 * 1024,
			AllowedExtensions: []string{"jpg", "jpeg", "png", "webp"},
		},
		Thumbnail: config.ThumbnailConfig{Width: 250, Height: 250, Quality: 85},
		Vault: config.VaultConfig{
			KDFIterations:     1000,
			MaxUnlockFailures: 3,
			FailureWindowSecs: 60,
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	}
	return basePath
}

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) CountByUsername(_ context.Context, username string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Username == username {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return *u, nil
}

func (r *fakeUserRepo) ListIDs(_ context.Context, _ *gorm.DB) ([]uint, error) {
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeUserRepo) DeleteByID(_ context.Context, _ *gorm.DB, userID uint) error {
	delete(r.users, userID)
	return nil
}

type fakeTxManager struct {
	failWith error
	// beforeTx runs just before the transaction body, standing in for work
	// another request finished in the gap between read and commit.
	beforeTx func()
}

func (m *fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.beforeTx != nil {
		m.beforeTx()
	}
	return fn(nil)
}

type fakeStorageRepo struct {
	records map[uint]*models.UserStorage
	nextID  uint
}

func newFakeStorageRepo() *fakeStorageRepo {
	return &fakeStorageRepo{records: map[uint]*models.UserStorage{}}
}

func (r *fakeStorageRepo) Create(_ context.Context, _ *gorm.DB, storage *models.UserStorage) error {
	if _, ok := r.records[storage.UserID]; ok {
		return errors.New("duplicate storage record")
	}
	r.nextID++
	storage.ID = r.nextID
	cp := *storage
	r.records[storage.UserID] = &cp
	return nil
}

func (r *fakeStorageRepo) GetByUser(_ context.Context, _ *gorm.DB, userID uint) (models.UserStorage, error) {
	rec, ok := r.records[userID]
	if !ok {
		return models.UserStorage{}, gorm.ErrRecordNotFound
	}
	return *rec, nil
}

func (r *fakeStorageRepo) ApplyDelta(_ context.Context, _ *gorm.DB, userID uint, byteDelta, fileDelta int64) (int64, error) {
	rec, ok := r.records[userID]
	if !ok {
		return 0, nil
	}
	if rec.FileCount+fileDelta < 0 || rec.TotalBytes+byteDelta < 0 {
		return 0, nil
	}
	rec.FileCount += fileDelta
	rec.TotalBytes += byteDelta
	return 1, nil
}

func (r *fakeStorageRepo) Overwrite(_ context.Context, _ *gorm.DB, userID uint, totalBytes, fileCount int64) error {
	rec, ok := r.records[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.TotalBytes = totalBytes
	rec.FileCount = fileCount
	return nil
}

func (r *fakeStorageRepo) DeleteByUser(_ context.Context, _ *gorm.DB, userID uint) error {
	delete(r.records, userID)
	return nil
}

type fakePhotoRepo struct {
	photos map[string]*models.Photo
}

func newFakePhotoRepo() *fakePhotoRepo {
	return &fakePhotoRepo{photos: map[string]*models.Photo{}}
}

func (r *fakePhotoRepo) Create(_ context.Context, _ *gorm.DB, photo *models.Photo) error {
	cp := *photo
	r.photos[photo.ID] = &cp
	return nil
}

func (r *fakePhotoRepo) GetByID(_ context.Context, _ *gorm.DB, photoID string) (models.Photo, error) {
	p, ok := r.photos[photoID]
	if !ok {
		return models.Photo{}, gorm.ErrRecordNotFound
	}
	return *p, nil
}

func (r *fakePhotoRepo) List(_ context.Context, _ *gorm.DB, in repositories.ListPhotosInput) ([]models.Photo, error) {
	var out []models.Photo
	for _, p := range r.photos {
		if p.UserID == in.UserID && p.IsDeleted == in.OnlyTrashed {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePhotoRepo) Count(_ context.Context, _ *gorm.DB, userID uint, onlyTrashed bool) (int64, error) {
	var n int64
	for _, p := range r.photos {
		if p.UserID == userID && p.IsDeleted == onlyTrashed {
			n++
		}
	}
	return n, nil
}

func (r *fakePhotoRepo) MarkTrashed(_ context.Context, _ *gorm.DB, photoID string, userID uint, deletedAt time.Time) (int64, error) {
	p, ok := r.photos[photoID]
	if !ok || p.UserID != userID || p.IsDeleted {
		return 0, nil
	}
	p.IsDeleted = true
	p.DeletedAt = &deletedAt
	return 1, nil
}

func (r *fakePhotoRepo) MarkRestored(_ context.Context, _ *gorm.DB, photoID string, userID uint) (int64, error) {
	p, ok := r.photos[photoID]
	if !ok || p.UserID != userID || !p.IsDeleted {
		return 0, nil
	}
	p.IsDeleted = false
	p.DeletedAt = nil
	return 1, nil
}

func (r *fakePhotoRepo) MarkEncrypted(_ context.Context, _ *gorm.DB, photoID, storagePath, saltHex string, fileSize int64) (int64, error) {
	p, ok := r.photos[photoID]
	if !ok || p.IsEncrypted {
		return 0, nil
	}
	p.IsEncrypted = true
	p.StoragePath = storagePath
	p.EncryptionSalt = saltHex
	p.FileSize = fileSize
	return 1, nil
}

func (r *fakePhotoRepo) HardDelete(_ context.Context, _ *gorm.DB, photoID string, userID uint) (int64, error) {
	p, ok := r.photos[photoID]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	delete(r.photos, photoID)
	return 1, nil
}

func (r *fakePhotoRepo) UpdateByIDAndUser(_ context.Context, _ *gorm.DB, photoID string, userID uint, updates map[string]interface{}) error {
	p, ok := r.photos[photoID]
	if !ok || p.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["description"]; ok {
		p.Description = v.(string)
	}
	if v, ok := updates["tags"]; ok {
		p.Tags = v.(string)
	}
	if v, ok := updates["is_encrypted"]; ok {
		p.IsEncrypted = v.(bool)
	}
	if v, ok := updates["storage_path"]; ok {
		p.StoragePath = v.(string)
	}
	if v, ok := updates["encryption_salt"]; ok {
		p.EncryptionSalt = v.(string)
	}
	if v, ok := updates["file_size"]; ok {
		p.FileSize = v.(int64)
	}
	return nil
}

func (r *fakePhotoRepo) ListByCalendarDay(_ context.Context, _ *gorm.DB, userID uint, month time.Month, day int) ([]models.Photo, error) {
	var out []models.Photo
	for _, p := range r.photos {
		if p.UserID != userID || p.IsDeleted || p.DateTaken == nil {
			continue
		}
		if p.DateTaken.Month() == month && p.DateTaken.Day() == day {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePhotoRepo) DeleteByUser(_ context.Context, _ *gorm.DB, userID uint) error {
	for id, p := range r.photos {
		if p.UserID == userID {
			delete(r.photos, id)
		}
	}
	return nil
}

type fakeAttemptRepo struct {
	counts map[uint]int64
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{counts: map[uint]int64{}}
}

func (r *fakeAttemptRepo) RegisterFailure(_ context.Context, userID uint, _ int) (int64, error) {
	r.counts[userID]++
	return r.counts[userID], nil
}

func (r *fakeAttemptRepo) FailureCount(_ context.Context, userID uint) (int64, error) {
	return r.counts[userID], nil
}

func (r *fakeAttemptRepo) Clear(_ context.Context, userID uint) error {
	delete(r.counts, userID)
	return nil
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanAccessOwner(context.Context, uint, uint) error { return nil }

// fakeMetadataExtractor records the path it saw and stamps fixed fields so
// tests can tell the extractor ran against the stored file.
type fakeMetadataExtractor struct {
	lastPath    string
	cameraMake  string
	cameraModel string
}

func (e *fakeMetadataExtractor) Extract(path string, photo *models.Photo) {
	e.lastPath = path
	photo.CameraMake = e.cameraMake
	photo.CameraModel = e.cameraModel
}

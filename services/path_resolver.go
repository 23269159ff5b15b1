package services

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// Bucket is a logical storage area inside an owner's directory tree.
type Bucket string

const (
	BucketPhotos          Bucket = "photos"
	BucketThumbnails      Bucket = "thumbnails"
	BucketVaultPhotos     Bucket = "vault/photos"
	BucketVaultThumbnails Bucket = "vault/thumbnails"
)

// pathResolver maps (owner, bucket) to an absolute directory and guarantees
// the directory exists on return. It holds no state beyond the base path, and
// never resolves into another owner's tree.
type pathResolver struct {
	basePath string
}

func newPathResolver(basePath string) pathResolver {
	return pathResolver{basePath: basePath}
}

func (r pathResolver) userRoot(userID uint) string {
	return filepath.Join(r.basePath, fmt.Sprintf("%d", userID))
}

func (r pathResolver) resolve(userID uint, bucket Bucket) (string, error) {
	dir := filepath.Join(r.userRoot(userID), filepath.FromSlash(string(bucket)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", newAppError(http.StatusServiceUnavailable, "storage directory unavailable", err)
	}
	return dir, nil
}

const (
	vaultBlobSuffix      = ".vault"
	vaultThumbBlobSuffix = ".tmb.vault"
	thumbnailSuffix      = ".jpg"
)

func (r pathResolver) thumbnailPath(userID uint, photoID string) (string, error) {
	dir, err := r.resolve(userID, BucketThumbnails)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, photoID+thumbnailSuffix), nil
}

func (r pathResolver) vaultPhotoPath(userID uint, photoID string) (string, error) {
	dir, err := r.resolve(userID, BucketVaultPhotos)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, photoID+vaultBlobSuffix), nil
}

func (r pathResolver) vaultThumbnailPath(userID uint, photoID string) (string, error) {
	dir, err := r.resolve(userID, BucketVaultThumbnails)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, photoID+vaultThumbBlobSuffix), nil
}

package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabrielbaute/octopus-photos/config"

	"github.com/disintegration/imaging"
)

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer("..", "_", "/", "_", "\\", "_")
	return replacer.Replace(name)
}

func isFileExtensionAllowed(fileName string) bool {
	allowed := config.AppConfig.Storage.AllowedExtensions
	fileExt := strings.ToLower(filepath.Ext(fileName))
	for _, ext := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if normalized == fileExt {
			return true
		}
	}
	return false
}

func allowedExtensionSet() map[string]bool {
	set := make(map[string]bool, len(config.AppConfig.Storage.AllowedExtensions))
	for _, ext := range config.AppConfig.Storage.AllowedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		set[normalized] = true
	}
	return set
}

func getMimeType(ext string) string {
	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
	}
	if mt, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// GenerateThumbnail re-encodes a bounded JPEG preview, preserving aspect ratio.
func GenerateThumbnail(srcPath, dstPath string) error {
	cfg := config.AppConfig

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	thumb := imaging.Fit(img, cfg.Thumbnail.Width, cfg.Thumbnail.Height, imaging.Lanczos)
	return imaging.Save(thumb, dstPath, imaging.JPEGQuality(cfg.Thumbnail.Quality))
}

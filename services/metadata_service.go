package services

import (
	"os"

	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/models"

	"github.com/rwcarlsen/goexif/exif"
)

// MetadataExtractor fills capture metadata from the image on disk. Extraction
// is best-effort; a photo without usable EXIF simply carries empty fields.
type MetadataExtractor interface {
	Extract(path string, photo *models.Photo)
}

type exifExtractor struct{}

func NewMetadataExtractor() MetadataExtractor {
	return exifExtractor{}
}

func (exifExtractor) Extract(path string, photo *models.Photo) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		logger.Debugf("no exif data in %s: %v", path, err)
		return
	}

	if taken, err := x.DateTime(); err == nil {
		photo.DateTaken = &taken
	}
	if v, ok := exifString(x, exif.Make); ok {
		photo.CameraMake = v
	}
	if v, ok := exifString(x, exif.Model); ok {
		photo.CameraModel = v
	}
	if v, ok := exifRat(x, exif.FocalLength); ok {
		photo.FocalLength = &v
	}
	if v, ok := exifInt(x, exif.ISOSpeedRatings); ok {
		photo.ISO = &v
	}
	if v, ok := exifRat(x, exif.ExposureTime); ok {
		photo.ExposureTime = &v
	}
	if v, ok := exifRat(x, exif.FNumber); ok {
		photo.Aperture = &v
	}
	if lat, long, err := x.LatLong(); err == nil {
		photo.Latitude = &lat
		photo.Longitude = &long
	}
}

func exifString(x *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return "", false
	}
	v, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return v, true
}

func exifRat(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

func exifInt(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return float64(v), true
}

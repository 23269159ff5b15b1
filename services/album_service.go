package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlbumService interface {
	Create(ctx context.Context, actorID uint, name string) (models.Album, error)
	Get(ctx context.Context, actorID uint, albumID string) (models.Album, error)
	List(ctx context.Context, actorID uint) ([]models.Album, error)
	Rename(ctx context.Context, actorID uint, albumID string, name string) error
	Delete(ctx context.Context, actorID uint, albumID string) error
	AddPhoto(ctx context.Context, actorID uint, albumID string, photoID string) error
	RemovePhoto(ctx context.Context, actorID uint, albumID string, photoID string) error
}

type albumService struct {
	albums     repositories.AlbumRepository
	photos     repositories.PhotoRepository
	authorizer Authorizer
}

func NewAlbumService(albums repositories.AlbumRepository, photos repositories.PhotoRepository, authorizer Authorizer) AlbumService {
	return &albumService{albums: albums, photos: photos, authorizer: authorizer}
}

func (s *albumService) Create(ctx context.Context, actorID uint, name string) (models.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Album{}, newAppError(http.StatusBadRequest, "album name is required", nil)
	}

	album := models.Album{
		ID:     uuid.New().String(),
		UserID: actorID,
		Name:   name,
	}
	if err := s.albums.Create(ctx, nil, &album); err != nil {
		return models.Album{}, newAppError(http.StatusInternalServerError, "failed to create album", err)
	}
	return album, nil
}

func (s *albumService) Get(ctx context.Context, actorID uint, albumID string) (models.Album, error) {
	return s.getOwned(ctx, actorID, albumID, true)
}

func (s *albumService) List(ctx context.Context, actorID uint) ([]models.Album, error) {
	albums, err := s.albums.ListByUser(ctx, nil, actorID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list albums", err)
	}
	return albums, nil
}

func (s *albumService) Rename(ctx context.Context, actorID uint, albumID string, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newAppError(http.StatusBadRequest, "album name is required", nil)
	}
	if _, err := s.getOwned(ctx, actorID, albumID, false); err != nil {
		return err
	}
	if err := s.albums.UpdateName(ctx, nil, albumID, actorID, name); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to rename album", err)
	}
	return nil
}

func (s *albumService) Delete(ctx context.Context, actorID uint, albumID string) error {
	if _, err := s.getOwned(ctx, actorID, albumID, false); err != nil {
		return err
	}
	if err := s.albums.DeleteByIDAndUser(ctx, nil, albumID, actorID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete album", err)
	}
	return nil
}

func (s *albumService) AddPhoto(ctx context.Context, actorID uint, albumID string, photoID string) error {
	album, err := s.getOwned(ctx, actorID, albumID, false)
	if err != nil {
		return err
	}
	photo, err := loadAuthorizedPhoto(ctx, s.photos, s.authorizer, actorID, photoID)
	if err != nil {
		return err
	}
	if photo.UserID != album.UserID {
		return newAppError(http.StatusForbidden, "photo and album belong to different owners", nil)
	}
	if err := s.albums.AddPhoto(ctx, nil, album.ID, photo.ID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to add photo to album", err)
	}
	return nil
}

func (s *albumService) RemovePhoto(ctx context.Context, actorID uint, albumID string, photoID string) error {
	album, err := s.getOwned(ctx, actorID, albumID, false)
	if err != nil {
		return err
	}
	if err := s.albums.RemovePhoto(ctx, nil, album.ID, photoID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to remove photo from album", err)
	}
	return nil
}

func (s *albumService) getOwned(ctx context.Context, actorID uint, albumID string, preloadPhotos bool) (models.Album, error) {
	album, err := s.albums.GetByIDAndUser(ctx, nil, albumID, actorID, preloadPhotos)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Album{}, newAppError(http.StatusNotFound, "album not found", nil)
		}
		return models.Album{}, newAppError(http.StatusInternalServerError, "failed to read album", err)
	}
	return album, nil
}

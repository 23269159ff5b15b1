package services

import (
	"context"
	"net/http"

	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/repositories"
)

type UserService interface {
	// DeleteUser tears down an account: every photo, thumbnail, vault blob,
	// album and the quota ledger go with it.
	DeleteUser(ctx context.Context, actorID uint, userID uint) error
}

type userService struct {
	users      repositories.UserRepository
	albums     repositories.AlbumRepository
	storage    StorageService
	authorizer Authorizer
}

func NewUserService(
	users repositories.UserRepository,
	albums repositories.AlbumRepository,
	storage StorageService,
	authorizer Authorizer,
) UserService {
	return &userService{users: users, albums: albums, storage: storage, authorizer: authorizer}
}

func (s *userService) DeleteUser(ctx context.Context, actorID uint, userID uint) error {
	if err := s.authorizer.CanAccessOwner(ctx, actorID, userID); err != nil {
		return err
	}

	albums, err := s.albums.ListByUser(ctx, nil, userID)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to list albums", err)
	}
	for _, album := range albums {
		if err := s.albums.DeleteByIDAndUser(ctx, nil, album.ID, userID); err != nil {
			return newAppError(http.StatusInternalServerError, "failed to delete album", err)
		}
	}

	if err := s.storage.DeleteAllUserData(ctx, userID); err != nil {
		return err
	}
	if err := s.users.DeleteByID(ctx, nil, userID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete user", err)
	}

	logger.Warnf("user %d deleted by user %d", userID, actorID)
	return nil
}

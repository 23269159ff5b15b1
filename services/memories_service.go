package services

import (
	"context"
	"net/http"
	"time"

	"github.com/gabrielbaute/octopus-photos/config"
	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"
)

// MemoriesService surfaces photos taken on today's calendar day in earlier
// years. The background worker just precounts them periodically so operators
// can see the feature working in the logs.
type MemoriesService interface {
	ListMemories(ctx context.Context, actorID uint) ([]models.Photo, error)
	StartWorker(ctx context.Context)
}

type memoriesService struct {
	users  repositories.UserRepository
	photos repositories.PhotoRepository
}

func NewMemoriesService(users repositories.UserRepository, photos repositories.PhotoRepository) MemoriesService {
	return &memoriesService{users: users, photos: photos}
}

func (s *memoriesService) ListMemories(ctx context.Context, actorID uint) ([]models.Photo, error) {
	now := time.Now()
	photos, err := s.photos.ListByCalendarDay(ctx, nil, actorID, now.Month(), now.Day())
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list memories", err)
	}

	// A photo taken today is not a memory yet.
	memories := photos[:0]
	for _, photo := range photos {
		if photo.DateTaken != nil && photo.DateTaken.Year() < now.Year() {
			memories = append(memories, photo)
		}
	}
	return memories, nil
}

func (s *memoriesService) StartWorker(ctx context.Context) {
	if !config.AppConfig.Memories.Enabled {
		return
	}
	interval := time.Duration(config.AppConfig.Memories.IntervalHours) * time.Hour

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.scanOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				logger.Infof("memories worker stopped")
				return
			case <-ticker.C:
				s.scanOnce(ctx)
			}
		}
	}()
	logger.Infof("memories worker started, interval %s", interval)
}

func (s *memoriesService) scanOnce(ctx context.Context) {
	userIDs, err := s.users.ListIDs(ctx, nil)
	if err != nil {
		logger.Errorf("memories scan failed to list users: %v", err)
		return
	}
	for _, userID := range userIDs {
		memories, err := s.ListMemories(ctx, userID)
		if err != nil {
			logger.Errorf("memories scan failed for user %d: %v", userID, err)
			continue
		}
		if len(memories) > 0 {
			logger.Infof("user %d has %d memories for today", userID, len(memories))
		}
	}
}

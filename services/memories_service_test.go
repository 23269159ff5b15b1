package services

import (
	"context"
	"testing"
	"time"

	"github.com/gabrielbaute/octopus-photos/models"
)

func TestListMemoriesFiltersCurrentYear(t *testing.T) {
	setupTestConfig(t)
	users := newFakeUserRepo()
	photos := newFakePhotoRepo()
	svc := NewMemoriesService(users, photos)

	now := time.Now()
	lastYear := now.AddDate(-1, 0, 0)
	fiveYearsAgo := now.AddDate(-5, 0, 0)
	otherDay := now.AddDate(-1, 0, 0).Add(48 * time.Hour)

	photos.photos["old"] = &models.Photo{ID: "old", UserID: 1, DateTaken: &fiveYearsAgo}
	photos.photos["recent"] = &models.Photo{ID: "recent", UserID: 1, DateTaken: &lastYear}
	photos.photos["today"] = &models.Photo{ID: "today", UserID: 1, DateTaken: &now}
	photos.photos["offday"] = &models.Photo{ID: "offday", UserID: 1, DateTaken: &otherDay}
	photos.photos["trashed"] = &models.Photo{ID: "trashed", UserID: 1, DateTaken: &lastYear, IsDeleted: true}
	photos.photos["nodate"] = &models.Photo{ID: "nodate", UserID: 1}

	memories, err := svc.ListMemories(context.Background(), 1)
	if err != nil {
		t.Fatalf("list memories failed: %v", err)
	}

	got := map[string]bool{}
	for _, p := range memories {
		got[p.ID] = true
	}
	if !got["old"] || !got["recent"] {
		t.Fatalf("expected old and recent photos, got %v", got)
	}
	if got["today"] || got["offday"] || got["trashed"] || got["nodate"] {
		t.Fatalf("unexpected photos in memories: %v", got)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	session := model.NewAttemptSession(7, 100, 10, now)
	session.SelectedAnswers[1] = []string{"A"}

	if err := store.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load(ctx, 7, 100)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.TimeRemaining != 600 || loaded.SelectedAnswers[1][0] != "A" {
		t.Fatalf("round trip lost data: %+v", loaded)
	}

	// 返回的是副本，改它不能影响存储里的会话
	loaded.SelectedAnswers[1][0] = "B"
	again, _ := store.Load(ctx, 7, 100)
	if again.SelectedAnswers[1][0] != "A" {
		t.Fatal("store must hand out isolated copies")
	}
}

func TestMemorySessionStoreMissAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if _, err := store.Load(ctx, 1, 2); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	session := model.NewAttemptSession(1, 2, 5, time.Now())
	if err := store.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, 1, 2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Load(ctx, 1, 2); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSessionKeyShape(t *testing.T) {
	if got := sessionKey(7, 100); got != "quiz_attempt:7:100" {
		t.Fatalf("unexpected key %q", got)
	}
}

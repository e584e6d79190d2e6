package service

import (
	"testing"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
)

func resultFor(userID uint, name string, score float64) model.Result {
	return model.Result{
		UserID: userID,
		Score:  score,
		User:   &model.User{Name: name},
	}
}

func TestSummarizeAttemptsEmpty(t *testing.T) {
	avg, passRate, top := summarizeAttempts(nil)
	if avg != 0 || passRate != 0 {
		t.Fatalf("empty attempts must yield zero aggregates, got %v / %v", avg, passRate)
	}
	if top != nil {
		t.Fatalf("empty attempts must yield nil top participant, got %+v", top)
	}
}

func TestSummarizeAttemptsAggregates(t *testing.T) {
	results := []model.Result{
		resultFor(1, "Alice", 80),
		resultFor(2, "Bob", 40),
		resultFor(3, "Carol", 60),
	}

	avg, passRate, top := summarizeAttempts(results)
	if avg != 60.0 {
		t.Fatalf("expected average 60.0, got %v", avg)
	}
	if passRate < 66.6 || passRate > 66.7 {
		t.Fatalf("expected pass rate ~66.67, got %v", passRate)
	}
	if top == nil || top.UserID != 1 || top.Score != 80 {
		t.Fatalf("expected Alice on top, got %+v", top)
	}
}

func TestSummarizeAttemptsTieKeepsEarliest(t *testing.T) {
	// 输入按提交时间升序；并列 90 分时先提交的 Alice 胜出
	results := []model.Result{
		resultFor(1, "Alice", 90),
		resultFor(2, "Bob", 90),
		resultFor(3, "Carol", 50),
	}

	_, _, top := summarizeAttempts(results)
	if top == nil || top.UserID != 1 || top.Name != "Alice" {
		t.Fatalf("tie must keep the earliest submitter, got %+v", top)
	}
}

func TestMergeWeekly(t *testing.T) {
	w1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, 7)
	w3 := w2.AddDate(0, 0, 7)

	signups := []repository.WeeklyCount{
		{Week: w1, Count: 4},
		{Week: w2, Count: 2},
	}
	completions := []repository.WeeklyCount{
		{Week: w2, Count: 10},
		{Week: w3, Count: 3},
	}

	merged := mergeWeekly(signups, completions)
	if len(merged) != 3 {
		t.Fatalf("expected 3 weeks, got %d", len(merged))
	}
	if !merged[0].Week.Equal(w1) || merged[0].Signups != 4 || merged[0].Completions != 0 {
		t.Fatalf("week 1 wrong: %+v", merged[0])
	}
	if !merged[1].Week.Equal(w2) || merged[1].Signups != 2 || merged[1].Completions != 10 {
		t.Fatalf("week 2 wrong: %+v", merged[1])
	}
	if !merged[2].Week.Equal(w3) || merged[2].Signups != 0 || merged[2].Completions != 3 {
		t.Fatalf("week 3 wrong: %+v", merged[2])
	}
}

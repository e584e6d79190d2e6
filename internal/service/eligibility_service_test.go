package service

import (
	"errors"
	"testing"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
)

func TestQuizAvailableWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		quiz  model.Quiz
		now   time.Time
		want  bool
		cause error
	}{
		{"no window is always open", model.Quiz{}, start, true, nil},
		{"before start", model.Quiz{StartDate: &start}, start.Add(-time.Second), false, util.ErrNotYetAvailable},
		{"at start", model.Quiz{StartDate: &start}, start, true, nil},
		{"inside window", model.Quiz{StartDate: &start, ExpiryDate: &expiry}, start.Add(24 * time.Hour), true, nil},
		{"at expiry", model.Quiz{ExpiryDate: &expiry}, expiry, true, nil},
		{"after expiry", model.Quiz{ExpiryDate: &expiry}, expiry.Add(time.Second), false, util.ErrExpired},
		{"only start, far future now", model.Quiz{StartDate: &start}, expiry.AddDate(1, 0, 0), true, nil},
	}

	for _, tc := range cases {
		if got := QuizAvailable(&tc.quiz, tc.now); got != tc.want {
			t.Fatalf("%s: QuizAvailable got %v, want %v", tc.name, got, tc.want)
		}
		err := AvailabilityError(&tc.quiz, tc.now)
		if tc.cause == nil && err != nil {
			t.Fatalf("%s: unexpected availability error %v", tc.name, err)
		}
		if tc.cause != nil && !errors.Is(err, tc.cause) {
			t.Fatalf("%s: got error %v, want %v", tc.name, err, tc.cause)
		}
	}
}

func TestAvailabilityMonotonicAroundBounds(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := start.Add(48 * time.Hour)
	quiz := model.Quiz{StartDate: &start, ExpiryDate: &expiry}

	// 窗口内单调可用，窗口外单调不可用
	for _, delta := range []time.Duration{0, time.Minute, time.Hour, 47 * time.Hour} {
		if !QuizAvailable(&quiz, start.Add(delta)) {
			t.Fatalf("expected available at start+%v", delta)
		}
	}
	for _, delta := range []time.Duration{time.Second, time.Minute, 24 * time.Hour} {
		if QuizAvailable(&quiz, start.Add(-delta)) {
			t.Fatalf("expected unavailable at start-%v", delta)
		}
		if QuizAvailable(&quiz, expiry.Add(delta)) {
			t.Fatalf("expected unavailable at expiry+%v", delta)
		}
	}
}

func TestRemainingAttempts(t *testing.T) {
	cases := []struct {
		max, prior, want int
	}{
		{3, 0, 3},
		{3, 1, 2},
		{3, 3, 0},
		{3, 5, 0}, // 历史超额也不会变成负数
		{1, 0, 1},
		{1, 1, 0},
	}
	for _, tc := range cases {
		if got := RemainingAttempts(tc.max, tc.prior); got != tc.want {
			t.Fatalf("RemainingAttempts(%d, %d) = %d, want %d", tc.max, tc.prior, got, tc.want)
		}
	}
}

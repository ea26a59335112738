package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/piggy-wanger/keep-fit/middleware"
)

func TestDayOfUsesLocalCalendarDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)

	// 23:30 local is already the previous day in UTC; the stored day must
	// still be the local calendar day.
	late := time.Date(2026, 3, 10, 23, 30, 0, 0, shanghai)
	if got := dayOf(late); !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dayOf(23:30 CST) = %v, want 2026-03-10 UTC", got)
	}

	early := time.Date(2026, 3, 10, 0, 15, 0, 0, shanghai)
	if got := dayOf(early); !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dayOf(00:15 CST) = %v, want 2026-03-10 UTC", got)
	}
}

func TestWeekStartOf(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name string
		day  time.Time
		want time.Time
	}{
		{"sunday is its own week start", day(2026, 3, 8), day(2026, 3, 8)},
		{"monday", day(2026, 3, 9), day(2026, 3, 8)},
		{"saturday", day(2026, 3, 14), day(2026, 3, 8)},
		{"week spans month boundary", day(2026, 4, 1), day(2026, 3, 29)},
		{"week spans year boundary", day(2026, 1, 2), day(2025, 12, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStartOf(tt.day); !got.Equal(tt.want) {
				t.Errorf("weekStartOf(%v) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestMonthStartOf(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if got := monthStartOf(day(2026, 2, 28)); !got.Equal(day(2026, 2, 1)) {
		t.Errorf("monthStartOf(2026-02-28) = %v", got)
	}
	if got := monthStartOf(day(2026, 2, 1)); !got.Equal(day(2026, 2, 1)) {
		t.Errorf("monthStartOf(2026-02-01) = %v", got)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		size     string
		wantPage int
		wantSize int
	}{
		{"defaults", "", "", 1, 10},
		{"valid", "3", "25", 3, 25},
		{"zero page", "0", "10", 1, 10},
		{"negative", "-2", "-5", 1, 10},
		{"size over cap", "1", "500", 1, 10},
		{"garbage", "abc", "xyz", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := parsePagination(tt.page, tt.size)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("parsePagination(%q, %q) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func() *gin.Context {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		return ctx
	}

	ctx := newCtx()
	if _, ok := getUserID(ctx); ok {
		t.Error("expected false when user id is unset")
	}

	for _, value := range []interface{}{uint(42), int(42), int64(42), float64(42)} {
		ctx := newCtx()
		ctx.Set(middleware.ContextUserIDKey, value)
		id, ok := getUserID(ctx)
		if !ok || id != 42 {
			t.Errorf("getUserID with %T = (%d, %v), want (42, true)", value, id, ok)
		}
	}

	ctx = newCtx()
	ctx.Set(middleware.ContextUserIDKey, "42")
	if _, ok := getUserID(ctx); ok {
		t.Error("expected false for string user id")
	}
}

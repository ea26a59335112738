package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/piggy-wanger/keep-fit/middleware"
)

// dayOf normalizes t to its local calendar day rendered as a UTC date.
// Check-in rows store days this way, so reads must derive them the same.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStartOf returns the Sunday beginning the week that contains day.
func weekStartOf(day time.Time) time.Time {
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// monthStartOf returns the first day of the month that contains day.
func monthStartOf(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

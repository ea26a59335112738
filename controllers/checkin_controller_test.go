package controllers

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsCheckInConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"pre-check hit", errAlreadyCheckedIn, true},
		{"unique index violation", gorm.ErrDuplicatedKey, true},
		{"wrapped duplicate key", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"record not found", gorm.ErrRecordNotFound, false},
		{"other error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCheckInConflict(tt.err); got != tt.want {
				t.Errorf("isCheckInConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

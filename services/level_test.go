package services

import "testing"

func TestApplyExperience(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		exp       int
		gain      int
		wantLevel int
		wantExp   int
		wantUp    bool
	}{
		{"no level up", 1, 30, 20, 1, 50, false},
		{"exact threshold", 1, 80, 20, 2, 0, true},
		{"overflow rolls into next level", 1, 90, 30, 2, 20, true},
		{"double level up", 1, 95, 210, 3, 5, true},
		{"higher level needs more", 5, 480, 10, 5, 490, false},
		{"higher level up", 5, 490, 10, 6, 0, true},
		{"zero level treated as 1", 0, 0, 120, 2, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, exp, up := ApplyExperience(tt.level, tt.exp, tt.gain)
			if level != tt.wantLevel || exp != tt.wantExp || up != tt.wantUp {
				t.Errorf("ApplyExperience(%d,%d,%d) = (%d,%d,%v), want (%d,%d,%v)",
					tt.level, tt.exp, tt.gain, level, exp, up,
					tt.wantLevel, tt.wantExp, tt.wantUp)
			}
		})
	}
}

func TestDeductExperienceFloorsAtZero(t *testing.T) {
	if got := DeductExperience(30, 20); got != 10 {
		t.Errorf("DeductExperience(30,20) = %d, want 10", got)
	}
	if got := DeductExperience(10, 20); got != 0 {
		t.Errorf("DeductExperience(10,20) = %d, want 0", got)
	}
}

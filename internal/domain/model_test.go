package domain

import (
	"testing"
	"time"
)

func TestTimeWindow(t *testing.T) {
	aug := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		window    TimeWindow
		wantZero  bool
		wantValid bool
	}{
		{"zero", TimeWindow{}, true, true},
		{"from only", TimeWindow{From: aug}, false, true},
		{"to only", TimeWindow{To: sep}, false, true},
		{"ordered", TimeWindow{From: aug, To: sep}, false, true},
		{"equal bounds", TimeWindow{From: aug, To: aug}, false, true},
		{"inverted", TimeWindow{From: sep, To: aug}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.IsZero(); got != tt.wantZero {
				t.Errorf("IsZero() = %v, want %v", got, tt.wantZero)
			}
			if got := tt.window.Valid(); got != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", got, tt.wantValid)
			}
		})
	}
}

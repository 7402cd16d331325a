package mains

import "testing"

func TestForTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     float64
	}{
		// 50 Hz grids
		{"Europe/London", 50},
		{"Europe/Berlin", 50},
		{"Australia/Sydney", 50},
		{"Asia/Shanghai", 50},
		{"Asia/Tokyo", 50}, // Japan defaults to the 50 Hz (Tokyo) grid

		// 60 Hz grids
		{"America/New_York", 60},
		{"America/Chicago", 60},
		{"America/Toronto", 60},
		{"America/Mexico_City", 60},
		{"America/Sao_Paulo", 60},
		{"Asia/Seoul", 60},
		{"Asia/Manila", 60},

		// No country association
		{"UTC", 50},
		{"GMT", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			if got := ForTimezone(tt.timezone); got != tt.want {
				t.Errorf("ForTimezone(%q) = %g, want %g", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	// Detection depends on the host environment; just check the value is one
	// of the two real grid frequencies.
	if hz := Detect(); hz != 50 && hz != 60 {
		t.Errorf("Detect() = %g, want 50 or 60", hz)
	}
}

func TestHarmonics(t *testing.T) {
	got := Harmonics(50, 260)
	want := []float64{50, 100, 150, 200, 250}
	if len(got) != len(want) {
		t.Fatalf("Harmonics(50, 260) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Harmonics(50, 260)[%d] = %g, want %g", i, got[i], want[i])
		}
	}

	if got := Harmonics(0, 260); got != nil {
		t.Errorf("Harmonics(0, 260) = %v, want nil", got)
	}
	if got := Harmonics(300, 260); got != nil {
		t.Errorf("Harmonics(300, 260) = %v, want nil", got)
	}
}

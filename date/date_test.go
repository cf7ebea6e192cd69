package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-01-15", want: New(2024, time.January, 15)},
		{in: "2024-1-5", want: New(2024, time.January, 5)},
		{in: "2024-01-15T00:00:00", want: New(2024, time.January, 15)},
		{in: "2024-01-15T23:59:59.000Z", want: New(2024, time.January, 15)},
		{in: "15/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalization(t *testing.T) {
	if got, want := New(2024, time.January, 32), New(2024, time.February, 1); got != want {
		t.Errorf("New(2024, 1, 32) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.March, 1).Add(-1), New(2024, time.February, 29); got != want {
		t.Errorf("Add(-1) = %v, want %v", got, want)
	}
}

func TestCompare(t *testing.T) {
	a, b := MustParse("2024-01-15"), MustParse("2024-01-16")
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare(%v, %v) is not consistent", a, b)
	}
}

func TestJSONMapKey(t *testing.T) {
	var m map[Date]float64
	if err := json.Unmarshal([]byte(`{"2024-01-12": 1.5, "2024-01-15": 2}`), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := m[MustParse("2024-01-12")]; got != 1.5 {
		t.Errorf("m[2024-01-12] = %v want 1.5", got)
	}
	if len(m) != 2 {
		t.Errorf("len(m) = %v want 2", len(m))
	}
}

package schedule

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input string
		want  TimeOfDay
	}{
		{"10:00:00", TimeOfDay{Hour: 10}},
		{"00:00:00", TimeOfDay{}},
		{"23:59:59", TimeOfDay{Hour: 23, Minute: 59, Second: 59}},
		{"09:30:15", TimeOfDay{Hour: 9, Minute: 30, Second: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tod, err := ParseTimeOfDay(tt.input)

			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) returned error: %v", tt.input, err)
			}
			if tod != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, tod, tt.want)
			}
		})
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unpadded hour", "9:00:00"},
		{"missing seconds", "10:00"},
		{"fractional seconds", "10:00:00.5"},
		{"hour out of range", "24:00:00"},
		{"minute out of range", "10:60:00"},
		{"second out of range", "10:00:60"},
		{"empty string", ""},
		{"with date prefix", "2025-01-01 10:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimeOfDay(tt.input)

			if err == nil {
				t.Fatalf("ParseTimeOfDay(%q) expected error, got nil", tt.input)
			}
		})
	}
}

func TestTimeOfDayBefore(t *testing.T) {
	tests := []struct {
		name string
		t1   TimeOfDay
		t2   TimeOfDay
		want bool
	}{
		{"earlier hour", TimeOfDay{Hour: 9}, TimeOfDay{Hour: 10}, true},
		{"equal times", TimeOfDay{Hour: 10}, TimeOfDay{Hour: 10}, false},
		{"later minute", TimeOfDay{Hour: 10, Minute: 30}, TimeOfDay{Hour: 10}, false},
		{"second precision", TimeOfDay{Hour: 9, Minute: 59, Second: 59}, TimeOfDay{Hour: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t1.Before(tt.t2); got != tt.want {
				t.Errorf("%v.Before(%v) = %v, want %v", tt.t1, tt.t2, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	tod := TimeOfDay{Hour: 9, Minute: 5, Second: 0}

	if got := tod.String(); got != "09:05:00" {
		t.Errorf("String() = %q, want %q", got, "09:05:00")
	}
}

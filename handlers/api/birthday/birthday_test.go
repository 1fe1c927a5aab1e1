package birthday

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var birthday = time.Date(2024, time.June, 18, 0, 0, 0, 0, time.UTC)

func TestAge(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before first birthday", time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC), 0},
		{"on first birthday", time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC), 1},
		{"after second birthday", time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC), 2},
		{"before the birth date", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Age(birthday, tt.now); got != tt.want {
				t.Errorf("Age() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsBirthday(t *testing.T) {
	if !IsBirthday(birthday, time.Date(2026, time.June, 18, 15, 30, 0, 0, time.UTC)) {
		t.Error("June 18 should be the birthday")
	}
	if IsBirthday(birthday, time.Date(2026, time.June, 19, 0, 0, 0, 0, time.UTC)) {
		t.Error("June 19 should not be the birthday")
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"on the day", time.Date(2026, time.June, 18, 12, 0, 0, 0, time.UTC), 0},
		{"one day before", time.Date(2026, time.June, 17, 0, 0, 0, 0, time.UTC), 1},
		{"day after wraps to next year", time.Date(2026, time.June, 19, 0, 0, 0, 0, time.UTC), 364},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(birthday, tt.now); got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBirthdayFromEnv(t *testing.T) {
	t.Setenv("KOTO_BIRTHDAY", "2023-12-01")
	got := BirthdayFromEnv()
	if got.Year() != 2023 || got.Month() != time.December || got.Day() != 1 {
		t.Errorf("BirthdayFromEnv() = %v", got)
	}

	t.Setenv("KOTO_BIRTHDAY", "not-a-date")
	if got := BirthdayFromEnv(); !got.Equal(DefaultBirthday) {
		t.Errorf("malformed value: got %v, want default", got)
	}

	t.Setenv("KOTO_BIRTHDAY", "")
	if got := BirthdayFromEnv(); !got.Equal(DefaultBirthday) {
		t.Errorf("unset value: got %v, want default", got)
	}
}

func TestHandleInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleInfo(birthday)(rec, httptest.NewRequest(http.MethodGet, "/api/birthday", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body InfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Birthday != "2024-06-18" {
		t.Errorf("birthday = %q, want 2024-06-18", body.Birthday)
	}
	if body.DaysUntilBirthday < 0 || body.DaysUntilBirthday > 366 {
		t.Errorf("daysUntilBirthday = %d out of range", body.DaysUntilBirthday)
	}
}

// Package birthday computes the home screen's age and countdown figures.
package birthday

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// DefaultBirthday is used when KOTO_BIRTHDAY is unset or malformed.
var DefaultBirthday = time.Date(2024, time.June, 18, 0, 0, 0, 0, time.Local)

type InfoResponse struct {
	Birthday          string `json:"birthday"`
	AgeYears          int    `json:"ageYears"`
	IsBirthday        bool   `json:"isBirthday"`
	DaysUntilBirthday int    `json:"daysUntilBirthday"`
}

// BirthdayFromEnv reads the configured birthday, format 2006-01-02.
func BirthdayFromEnv() time.Time {
	raw := os.Getenv("KOTO_BIRTHDAY")
	if raw == "" {
		return DefaultBirthday
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		logrus.WithFields(logrus.Fields{"value": raw, "error": err}).Warn("Malformed KOTO_BIRTHDAY, using default")
		return DefaultBirthday
	}
	return parsed
}

// Age returns full years between birthday and now.
func Age(birthday, now time.Time) int {
	years := now.Year() - birthday.Year()
	anniversary := time.Date(now.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}

// IsBirthday reports whether now falls on the birthday's month and day.
func IsBirthday(birthday, now time.Time) bool {
	return now.Month() == birthday.Month() && now.Day() == birthday.Day()
}

// DaysUntil returns the number of days until the next birthday, 0 on the
// day itself.
func DaysUntil(birthday, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	next := time.Date(now.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, now.Location())
	if next.Before(today) {
		next = next.AddDate(1, 0, 0)
	}
	return int(next.Sub(today).Hours() / 24)
}

// HandleInfo returns the birthday figures for the home screen.
func HandleInfo(birthday time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		render.JSON(w, r, InfoResponse{
			Birthday:          birthday.Format("2006-01-02"),
			AgeYears:          Age(birthday, now),
			IsBirthday:        IsBirthday(birthday, now),
			DaysUntilBirthday: DaysUntil(birthday, now),
		})
	}
}

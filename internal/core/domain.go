package core

import (
	"errors"
	"strings"
	"time"
)

// TimeLayout is the wire format for record timestamps in ledger files and
// exports.
const TimeLayout = "2006-01-02 15:04:05"

type (
	Money struct {
		Cents int64 `json:"cents"`
	}

	// Record is a single expense entry in a user's ledger.
	Record struct {
		Time        time.Time `json:"date"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// Month returns the record's period key in "YYYY-MM" form.
func (r Record) Month() string {
	return r.Time.Format("2006-01")
}

// SameCalendarMonth reports whether t falls in the same year and month as ref.
func SameCalendarMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

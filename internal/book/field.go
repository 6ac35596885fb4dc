package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Name is the validated display name of a contact.
// Immutable once constructed; two Names compare equal by stored value.
type Name struct {
	value string
}

// NewName validates and trims the given value.
func NewName(value string) (Name, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Name{}, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	return Name{value: trimmed}, nil
}

func (n Name) String() string { return n.value }

// Equal reports whether both names hold the same value.
func (n Name) Equal(other Name) bool { return n.value == other.value }

// Phone is a validated phone number of exactly ten decimal digits.
// Immutable once constructed; two Phones compare equal by stored value.
type Phone struct {
	value string
}

// NewPhone validates the given value as a ten-digit numeric string.
func NewPhone(value string) (Phone, error) {
	if len(value) != config.PhoneDigits {
		return Phone{}, fmt.Errorf("%w: phone number must contain exactly %d digits", ErrInvalidArgument, config.PhoneDigits)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return Phone{}, fmt.Errorf("%w: phone number must contain only digits", ErrInvalidArgument)
		}
	}
	return Phone{value: value}, nil
}

func (p Phone) String() string { return p.value }

// Equal reports whether both phones hold the same value.
func (p Phone) Equal(other Phone) bool { return p.value == other.value }

// Birthday is a calendar date, stored as midnight UTC.
// Immutable once constructed.
type Birthday struct {
	value time.Time
}

// NewBirthday parses a strict "DD.MM.YYYY" string into a Birthday.
// The day and month must be two digits, the year four, and the whole must be
// a valid calendar date.
func NewBirthday(value string) (Birthday, error) {
	t, err := time.Parse(config.DateFormatBirthday, value)
	if err != nil {
		return Birthday{}, fmt.Errorf("%w: invalid date format, use DD.MM.YYYY", ErrInvalidArgument)
	}
	return BirthdayFromTime(t), nil
}

// BirthdayFromTime constructs a Birthday directly from a date value,
// discarding the time-of-day and location.
func BirthdayFromTime(t time.Time) Birthday {
	return Birthday{value: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Date returns the stored date at midnight UTC.
func (b Birthday) Date() time.Time { return b.value }

// String renders the date back in DD.MM.YYYY form.
func (b Birthday) String() string { return b.value.Format(config.DateFormatBirthday) }

// occurrenceInYear recomputes the birthday's month and day against the given
// year. Feb 29 clamps to Feb 28 when the target year is not a leap year.
func (b Birthday) occurrenceInYear(year int) time.Time {
	d := time.Date(year, b.value.Month(), b.value.Day(), 0, 0, 0, 0, time.UTC)
	if d.Month() != b.value.Month() {
		// time.Date normalized Feb 29 into March 1.
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Next returns the next occurrence of the birthday on or after the given day.
func (b Birthday) Next(today time.Time) time.Time {
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	candidate := b.occurrenceInYear(today.Year())
	if candidate.Before(todayStart) {
		candidate = b.occurrenceInYear(today.Year() + 1)
	}
	return candidate
}

// NextCongratulation returns the next occurrence shifted off weekends: a
// birthday falling on Saturday or Sunday is congratulated the following Monday.
func (b Birthday) NextCongratulation(today time.Time) time.Time {
	return shiftOffWeekend(b.Next(today))
}

// shiftOffWeekend moves Saturday forward by two days and Sunday by one,
// landing both on the following Monday.
func shiftOffWeekend(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

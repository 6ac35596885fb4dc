package book

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// AddressBook is an insertion-order-preserving mapping from name string to
// contact record. Keys are unique: no two records share a name. The book is
// a plain in-memory structure with no internal locking; callers that share
// one instance across goroutines must serialize access themselves.
type AddressBook struct {
	records map[string]*Record
	order   []string
}

// New creates an empty address book.
func New() *AddressBook {
	return &AddressBook{records: make(map[string]*Record)}
}

// Add inserts a record keyed by its name string.
// Fails with ErrDuplicateField if a record with the same name exists.
func (ab *AddressBook) Add(rec *Record) error {
	key := rec.Name().String()
	if _, exists := ab.records[key]; exists {
		return fmt.Errorf("%w: record with name %q", ErrDuplicateField, key)
	}
	ab.records[key] = rec
	ab.order = append(ab.order, key)
	return nil
}

// Find returns the record for an exact name match. A miss is not an error.
func (ab *AddressBook) Find(name string) (*Record, bool) {
	rec, ok := ab.records[name]
	return rec, ok
}

// Delete removes the record with the given name.
// Fails with ErrNotFound if the name is absent.
func (ab *AddressBook) Delete(name string) error {
	if _, exists := ab.records[name]; !exists {
		return fmt.Errorf("%w: contact %q", ErrNotFound, name)
	}
	delete(ab.records, name)
	for i, key := range ab.order {
		if key == name {
			ab.order = append(ab.order[:i], ab.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of records in the book.
func (ab *AddressBook) Len() int { return len(ab.records) }

// Records returns all records in insertion order.
func (ab *AddressBook) Records() []*Record {
	out := make([]*Record, 0, len(ab.order))
	for _, key := range ab.order {
		out = append(out, ab.records[key])
	}
	return out
}

// Greeting pairs a contact name with the date on which the birthday reminder
// should fire, formatted as YYYY.MM.DD.
type Greeting struct {
	Name               string
	CongratulationDate string
}

// UpcomingBirthdays returns a greeting for every contact whose birthday,
// recomputed against today's year, falls within the next seven days
// (inclusive on both ends). Birthdays landing on a weekend are congratulated
// the following Monday. Results follow the book's iteration order; contacts
// without a birthday are excluded.
//
// Only occurrences inside today's calendar year are considered: a January
// birthday queried in late December is out of range, matching the year
// recomputation rule rather than a rolling window.
func (ab *AddressBook) UpcomingBirthdays(today time.Time) []Greeting {
	if ab.Len() == 0 {
		return nil
	}

	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var out []Greeting
	for _, rec := range ab.Records() {
		bday, ok := rec.Birthday()
		if !ok {
			continue
		}
		occurrence := bday.occurrenceInYear(today.Year())
		days := int(occurrence.Sub(todayStart).Hours() / 24)
		if days < 0 || days > config.UpcomingWindowDays {
			continue
		}
		out = append(out, Greeting{
			Name:               rec.Name().String(),
			CongratulationDate: shiftOffWeekend(occurrence).Format(config.DateFormatGreeting),
		})
	}
	return out
}

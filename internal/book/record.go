package book

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Record is a single contact: one name, an ordered list of unique phone
// numbers, and at most one birthday. The name is fixed at creation; phones
// and the birthday are mutated through the methods below. Validation always
// happens before any state change, so a failed call leaves the record intact.
type Record struct {
	name     Name
	phones   []Phone
	birthday *Birthday
}

// NewRecord creates a record with a validated name.
func NewRecord(name string) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n}, nil
}

// Name returns the contact's name.
func (r *Record) Name() Name { return r.name }

// Phones returns a copy of the phone list in insertion order.
func (r *Record) Phones() []Phone {
	out := make([]Phone, len(r.phones))
	copy(out, r.phones)
	return out
}

// AddPhone validates and appends a phone number, preserving insertion order.
// Adding a number already present fails with ErrDuplicateField.
func (r *Record) AddPhone(value string) error {
	p, err := NewPhone(value)
	if err != nil {
		return err
	}
	if _, ok := r.indexOf(p); ok {
		return fmt.Errorf("%w: phone %s", ErrDuplicateField, p)
	}
	r.phones = append(r.phones, p)
	return nil
}

// RemovePhone removes the phone equal to the given value.
func (r *Record) RemovePhone(value string) error {
	p, err := NewPhone(value)
	if err != nil {
		return err
	}
	i, ok := r.indexOf(p)
	if !ok {
		return fmt.Errorf("%w: phone %s", ErrNotFound, p)
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return nil
}

// EditPhone replaces oldValue with newValue in place, preserving its position.
// Fails with ErrDuplicateField if newValue is already present, and with
// ErrNotFound if oldValue does not match any existing phone.
func (r *Record) EditPhone(oldValue, newValue string) error {
	newPhone, err := NewPhone(newValue)
	if err != nil {
		return err
	}
	if _, ok := r.indexOf(newPhone); ok {
		return fmt.Errorf("%w: phone %s", ErrDuplicateField, newPhone)
	}
	oldPhone, err := NewPhone(oldValue)
	if err != nil {
		return err
	}
	i, ok := r.indexOf(oldPhone)
	if !ok {
		return fmt.Errorf("%w: phone %s", ErrNotFound, oldPhone)
	}
	r.phones[i] = newPhone
	return nil
}

// FindPhone returns the phone equal to the given value. Not finding one is
// not an error.
func (r *Record) FindPhone(value string) (Phone, bool) {
	for _, p := range r.phones {
		if p.String() == value {
			return p, true
		}
	}
	return Phone{}, false
}

// AddBirthday parses and stores the birthday. A record holds at most one
// birthday; setting a second fails with ErrDuplicateField.
func (r *Record) AddBirthday(value string) error {
	if r.birthday != nil {
		return fmt.Errorf("%w: birthday", ErrDuplicateField)
	}
	b, err := NewBirthday(value)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// SetBirthday stores an already-constructed Birthday, with the same set-once
// rule as AddBirthday. Used when rebuilding records from a snapshot.
func (r *Record) SetBirthday(b Birthday) error {
	if r.birthday != nil {
		return fmt.Errorf("%w: birthday", ErrDuplicateField)
	}
	r.birthday = &b
	return nil
}

// Birthday returns the stored birthday, if any.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

// String renders the record as a single human-readable line.
func (r *Record) String() string {
	phones := config.PlaceholderNoPhone
	if len(r.phones) > 0 {
		values := make([]string, len(r.phones))
		for i, p := range r.phones {
			values[i] = p.String()
		}
		phones = strings.Join(values, config.PhoneJoinSeparator)
	}
	return fmt.Sprintf(config.FormatRecordRender, r.name, phones)
}

func (r *Record) indexOf(p Phone) (int, bool) {
	for i, existing := range r.phones {
		if existing.Equal(p) {
			return i, true
		}
	}
	return 0, false
}

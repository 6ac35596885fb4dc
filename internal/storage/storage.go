package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// FileStore persists address book snapshots as a vCard 4.0 file on disk.
// Save overwrites the full prior state; Load of a missing file yields a
// fresh empty book rather than an error, so first runs need no setup.
type FileStore struct {
	Path string
}

// NewFileStore creates a store bound to the given snapshot path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load materializes the previously persisted book, or an empty one if no
// snapshot exists yet. Any other I/O or decode failure surfaces to the caller.
func (s *FileStore) Load() (*book.AddressBook, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return book.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSnapshotRead, err)
	}
	defer func() { _ = f.Close() }()

	ab, err := Decode(f)
	if err != nil {
		return nil, err
	}

	slog.Debug(config.MsgBookLoaded,
		config.LogKeyComponent, config.CompStorage,
		config.LogKeyPath, s.Path,
		config.LogKeyCount, ab.Len(),
	)
	return ab, nil
}

// Save durably persists the full book snapshot. The snapshot is written to a
// temporary file in the target directory and renamed over the previous state,
// so a crash mid-write never leaves a truncated book behind.
func (s *FileStore) Save(ab *book.AddressBook) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, ab); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(config.FilePermUserRW); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}

	slog.Debug(config.MsgBookSaved,
		config.LogKeyComponent, config.CompStorage,
		config.LogKeyPath, s.Path,
		config.LogKeyCount, ab.Len(),
	)
	return nil
}

// Encode writes every record as one vCard, in book iteration order.
// The card carries FN for the name, one TEL per phone in list order, and
// BDAY when a birthday is set; that is sufficient for exact reconstruction.
func Encode(w io.Writer, ab *book.AddressBook) error {
	enc := vcard.NewEncoder(w)
	for _, rec := range ab.Records() {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldFormattedName, rec.Name().String())
		for _, p := range rec.Phones() {
			card.AddValue(vcard.FieldTelephone, p.String())
		}
		if bd, ok := rec.Birthday(); ok {
			card.SetValue(vcard.FieldBirthday, bd.Date().Format(config.DateFormatVCard))
		}
		vcard.ToV4(card)
		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

// Decode rebuilds an address book from a vCard stream. Snapshots are produced
// by Encode, so a malformed entry means corruption and fails the whole load.
func Decode(r io.Reader) (*book.AddressBook, error) {
	dec := vcard.NewDecoder(r)
	ab := book.New()
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardDecode, err)
		}

		rec, err := recordFromCard(card)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardDecode, err)
		}
		if err := ab.Add(rec); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardDecode, err)
		}
	}
	return ab, nil
}

// recordFromCard converts one vCard into a contact record, validating every
// field through the domain constructors.
func recordFromCard(card vcard.Card) (*book.Record, error) {
	name := card.Value(vcard.FieldFormattedName)
	if name == "" {
		return nil, errors.New(config.ErrCardNoName)
	}

	rec, err := book.NewRecord(name)
	if err != nil {
		return nil, err
	}
	for _, tel := range card.Values(vcard.FieldTelephone) {
		if err := rec.AddPhone(tel); err != nil {
			return nil, err
		}
	}
	if bday := card.Value(vcard.FieldBirthday); bday != "" {
		t, err := parseVCardDate(bday)
		if err != nil {
			return nil, err
		}
		if err := rec.SetBirthday(book.BirthdayFromTime(t)); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// parseVCardDate handles the BDAY layouts Encode and common exporters emit.
func parseVCardDate(value string) (time.Time, error) {
	for _, layout := range []string{config.DateFormatVCard, config.DateFormatVCardBasic} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}

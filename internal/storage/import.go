package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// Import merges contacts from an external vCard stream into the book and
// returns the number of records added. Unlike Decode it is lenient: entries
// without a usable name, with an invalid birthday, or colliding with an
// existing contact are logged and skipped, so one bad card cannot abort a
// whole import. Invalid phone values are dropped from an otherwise good card.
func Import(ctx context.Context, ab *book.AddressBook, r io.Reader) (int, error) {
	log := slog.With(config.LogKeyComponent, config.CompStorage)
	dec := vcard.NewDecoder(r)

	added, skipped := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return added, fmt.Errorf("%s: %w", config.ErrVCardDecode, err)
		}

		name := card.Value(vcard.FieldFormattedName)
		if name == "" {
			log.Warn(config.MsgSkippedNoName)
			skipped++
			continue
		}

		rec, err := book.NewRecord(name)
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyName, name, config.LogKeyError, err)
			skipped++
			continue
		}

		for _, tel := range card.Values(vcard.FieldTelephone) {
			if err := rec.AddPhone(tel); err != nil {
				log.Debug(config.MsgSkippedPhone,
					config.LogKeyName, name,
					config.LogKeyValue, tel,
					config.LogKeyError, err,
				)
			}
		}

		if bday := card.Value(vcard.FieldBirthday); bday != "" {
			if t, err := parseVCardDate(bday); err == nil {
				_ = rec.SetBirthday(book.BirthdayFromTime(t))
			} else {
				log.Debug(config.MsgSkippedDate, config.LogKeyName, name, config.LogKeyValue, bday)
			}
		}

		if err := ab.Add(rec); err != nil {
			log.Warn(config.MsgSkippedDupe, config.LogKeyName, name)
			skipped++
			continue
		}
		added++
	}

	log.Info(config.MsgImportDone,
		config.LogKeyAdded, added,
		config.LogKeySkipped, skipped,
	)
	return added, nil
}

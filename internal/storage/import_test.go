package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/storage"
)

func TestImport_MergesValidCards(t *testing.T) {
	stream := `BEGIN:VCARD
VERSION:4.0
FN:Jack
TEL:5554446464
BDAY:2001-10-05
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:John
TEL:1234567890
TEL:5555555555
END:VCARD`

	ab := book.New()
	added, err := storage.Import(context.Background(), ab, strings.NewReader(stream))

	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, ab.Len())

	jack, ok := ab.Find("Jack")
	require.True(t, ok)
	bday, ok := jack.Birthday()
	require.True(t, ok)
	assert.Equal(t, "05.10.2001", bday.String())
}

func TestImport_SkipsDuplicatesAndBadEntries(t *testing.T) {
	// Jack already exists; the second card has no name; the third is fine.
	stream := `BEGIN:VCARD
VERSION:4.0
FN:Jack
TEL:5554446464
END:VCARD
BEGIN:VCARD
VERSION:4.0
TEL:1111111111
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:Roman
TEL:3334445566
END:VCARD`

	ab := book.New()
	existing, err := book.NewRecord("Jack")
	require.NoError(t, err)
	require.NoError(t, ab.Add(existing))

	added, err := storage.Import(context.Background(), ab, strings.NewReader(stream))

	require.NoError(t, err)
	assert.Equal(t, 1, added, "Only Roman should be added")
	assert.Equal(t, 2, ab.Len())

	jack, ok := ab.Find("Jack")
	require.True(t, ok)
	assert.Empty(t, jack.Phones(), "Existing record must not be touched by a skipped duplicate")
}

func TestImport_DropsInvalidPhonesKeepsRecord(t *testing.T) {
	stream := `BEGIN:VCARD
VERSION:4.0
FN:Jack
TEL:+33 1 23 45 67 89
TEL:5554446464
BDAY:garbage
END:VCARD`

	ab := book.New()
	added, err := storage.Import(context.Background(), ab, strings.NewReader(stream))

	require.NoError(t, err)
	assert.Equal(t, 1, added)

	jack, ok := ab.Find("Jack")
	require.True(t, ok)
	phones := jack.Phones()
	require.Len(t, phones, 1, "Non-conforming phone values are dropped")
	assert.Equal(t, "5554446464", phones[0].String())

	_, ok = jack.Birthday()
	assert.False(t, ok, "Unparseable BDAY leaves the record without a birthday")
}

func TestImport_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ab := book.New()
	_, err := storage.Import(ctx, ab, strings.NewReader("BEGIN:VCARD\nVERSION:4.0\nFN:X\nEND:VCARD"))

	assert.ErrorIs(t, err, context.Canceled)
}

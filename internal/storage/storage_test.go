package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/storage"
)

func buildRecord(t *testing.T, name string, phones []string, birthday string) *book.Record {
	t.Helper()
	rec, err := book.NewRecord(name)
	require.NoError(t, err)
	for _, p := range phones {
		require.NoError(t, rec.AddPhone(p))
	}
	if birthday != "" {
		require.NoError(t, rec.AddBirthday(birthday))
	}
	return rec
}

func TestFileStore_Load_MissingFile(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "nonexistent.vcf"))

	ab, err := store.Load()

	require.NoError(t, err, "A missing snapshot is a fresh start, not an error")
	require.NotNil(t, ab)
	assert.Equal(t, 0, ab.Len())
}

func TestFileStore_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addressbook.vcf")
	store := storage.NewFileStore(path)

	ab := book.New()
	require.NoError(t, ab.Add(buildRecord(t, "Jack", []string{"5554446464"}, "05.10.2001")))
	require.NoError(t, ab.Add(buildRecord(t, "John", []string{"1234567890", "5555555555"}, "14.10.2004")))
	require.NoError(t, ab.Add(buildRecord(t, "Roman", []string{"3334445566"}, "")))

	require.NoError(t, store.Save(ab))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())

	// Iteration order survives.
	var names []string
	for _, rec := range loaded.Records() {
		names = append(names, rec.Name().String())
	}
	assert.Equal(t, []string{"Jack", "John", "Roman"}, names)

	// Phone order survives.
	john, ok := loaded.Find("John")
	require.True(t, ok)
	phones := john.Phones()
	require.Len(t, phones, 2)
	assert.Equal(t, "1234567890", phones[0].String())
	assert.Equal(t, "5555555555", phones[1].String())

	// Birthdays survive exactly; absence survives too.
	jack, ok := loaded.Find("Jack")
	require.True(t, ok)
	bday, ok := jack.Birthday()
	require.True(t, ok)
	assert.Equal(t, "05.10.2001", bday.String())

	roman, ok := loaded.Find("Roman")
	require.True(t, ok)
	_, ok = roman.Birthday()
	assert.False(t, ok)
}

func TestFileStore_Save_OverwritesPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addressbook.vcf")
	store := storage.NewFileStore(path)

	first := book.New()
	require.NoError(t, first.Add(buildRecord(t, "Jack", nil, "")))
	require.NoError(t, store.Save(first))

	second := book.New()
	require.NoError(t, second.Add(buildRecord(t, "John", nil, "")))
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	_, ok := loaded.Find("Jack")
	assert.False(t, ok, "Save must replace the snapshot wholesale")
}

func TestFileStore_Save_EmptyBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addressbook.vcf")
	store := storage.NewFileStore(path)

	require.NoError(t, store.Save(book.New()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestFileStore_Load_CorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addressbook.vcf")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCARD\nFN:Broken\nTEL:123\nEND:VCARD\n"), 0600))

	store := storage.NewFileStore(path)
	_, err := store.Load()

	assert.Error(t, err, "A snapshot with an invalid phone is corruption, not a skip")
}

func TestEncode_VCardShape(t *testing.T) {
	ab := book.New()
	require.NoError(t, ab.Add(buildRecord(t, "Jack", []string{"5554446464"}, "05.10.2001")))

	var sb strings.Builder
	require.NoError(t, storage.Encode(&sb, ab))
	out := sb.String()

	assert.Contains(t, out, "FN:Jack")
	assert.Contains(t, out, "TEL:5554446464")
	assert.Contains(t, out, "BDAY:2001-10-05")
	assert.Contains(t, out, "VERSION:4.0")
}

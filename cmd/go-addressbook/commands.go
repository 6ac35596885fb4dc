package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/calendar"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/i18n"
	"github.com/tartampluch/go-addressbook/internal/server"
	"github.com/tartampluch/go-addressbook/internal/storage"
)

// appContext carries the shared dependencies into command Run methods via
// kong's binding mechanism.
type appContext struct {
	ctx        context.Context
	store      *storage.FileStore
	translator *i18n.Translator
	clock      book.Clock
}

// withBook runs a mutation against the loaded book and persists the result.
// The snapshot is only rewritten when the mutation succeeds.
func (a *appContext) withBook(mutate func(ab *book.AddressBook) error) error {
	ab, err := a.store.Load()
	if err != nil {
		return err
	}
	if err := mutate(ab); err != nil {
		return err
	}
	return a.store.Save(ab)
}

// summaryFormatter builds localized calendar event summaries. Age zero means
// the person is born on the event date itself.
func (a *appContext) summaryFormatter() func(name string, age int) string {
	return func(name string, age int) string {
		switch {
		case age == 0:
			return a.translator.MsgData(config.TKeyEvtSummaryBirth, map[string]any{"Name": name})
		case age > 0:
			return a.translator.MsgData(config.TKeyEvtSummaryAge, map[string]any{"Name": name, "Age": age})
		default:
			return a.translator.MsgData(config.TKeyEvtSummary, map[string]any{"Name": name})
		}
	}
}

// AddCmd creates a new contact, optionally with phones and a birthday.
type AddCmd struct {
	Name     string   `arg:"" help:"Contact name."`
	Phones   []string `arg:"" optional:"" help:"Phone numbers (10 digits each)."`
	Birthday string   `help:"Birthday in DD.MM.YYYY format."`
}

func (c *AddCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		rec, err := book.NewRecord(c.Name)
		if err != nil {
			return err
		}
		for _, p := range c.Phones {
			if err := rec.AddPhone(p); err != nil {
				return err
			}
		}
		if c.Birthday != "" {
			if err := rec.AddBirthday(c.Birthday); err != nil {
				return err
			}
		}
		if err := ab.Add(rec); err != nil {
			return err
		}
		fmt.Println(rec)
		return nil
	})
}

// DeleteCmd removes a contact by name.
type DeleteCmd struct {
	Name string `arg:"" help:"Contact name."`
}

func (c *DeleteCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		return ab.Delete(c.Name)
	})
}

// ShowCmd prints a single contact.
type ShowCmd struct {
	Name string `arg:"" help:"Contact name."`
}

func (c *ShowCmd) Run(app *appContext) error {
	ab, err := app.store.Load()
	if err != nil {
		return err
	}
	rec, ok := ab.Find(c.Name)
	if !ok {
		return fmt.Errorf("%w: contact %q", book.ErrNotFound, c.Name)
	}
	fmt.Println(rec)
	return nil
}

// ListCmd prints every contact in insertion order.
type ListCmd struct{}

func (c *ListCmd) Run(app *appContext) error {
	ab, err := app.store.Load()
	if err != nil {
		return err
	}
	for _, rec := range ab.Records() {
		fmt.Println(rec)
	}
	return nil
}

// AddPhoneCmd appends a phone number to an existing contact.
type AddPhoneCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `arg:"" help:"Phone number (10 digits)."`
}

func (c *AddPhoneCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		rec, ok := ab.Find(c.Name)
		if !ok {
			return fmt.Errorf("%w: contact %q", book.ErrNotFound, c.Name)
		}
		return rec.AddPhone(c.Phone)
	})
}

// RemovePhoneCmd removes a phone number from a contact.
type RemovePhoneCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `arg:"" help:"Phone number to remove."`
}

func (c *RemovePhoneCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		rec, ok := ab.Find(c.Name)
		if !ok {
			return fmt.Errorf("%w: contact %q", book.ErrNotFound, c.Name)
		}
		return rec.RemovePhone(c.Phone)
	})
}

// EditPhoneCmd replaces one phone number with another, keeping its position.
type EditPhoneCmd struct {
	Name     string `arg:"" help:"Contact name."`
	OldPhone string `arg:"" help:"Phone number to replace."`
	NewPhone string `arg:"" help:"Replacement phone number (10 digits)."`
}

func (c *EditPhoneCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		rec, ok := ab.Find(c.Name)
		if !ok {
			return fmt.Errorf("%w: contact %q", book.ErrNotFound, c.Name)
		}
		return rec.EditPhone(c.OldPhone, c.NewPhone)
	})
}

// SetBirthdayCmd records a contact's birthday.
type SetBirthdayCmd struct {
	Name     string `arg:"" help:"Contact name."`
	Birthday string `arg:"" help:"Birthday in DD.MM.YYYY format."`
}

func (c *SetBirthdayCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		rec, ok := ab.Find(c.Name)
		if !ok {
			return fmt.Errorf("%w: contact %q", book.ErrNotFound, c.Name)
		}
		return rec.AddBirthday(c.Birthday)
	})
}

// BirthdaysCmd lists the congratulation dates due within the coming week.
type BirthdaysCmd struct{}

func (c *BirthdaysCmd) Run(app *appContext) error {
	ab, err := app.store.Load()
	if err != nil {
		return err
	}

	greetings := ab.UpcomingBirthdays(app.clock.Now())
	if len(greetings) == 0 {
		fmt.Println(app.translator.Msg(config.TKeyBirthdaysNone))
		return nil
	}

	fmt.Println(app.translator.Msg(config.TKeyBirthdaysHeader))
	for _, g := range greetings {
		fmt.Printf(config.FormatGreetingEntry+"\n", g.Name, g.CongratulationDate)
	}
	return nil
}

// ImportCmd merges contacts from a local file or a remote vCard URL.
type ImportCmd struct {
	Source          string `arg:"" help:"Path or http(s) URL of a vCard file."`
	User            string `help:"Basic auth username for remote sources."`
	Pass            string `help:"Basic auth password; falls back to the system keyring when omitted."`
	SaveCredentials bool   `help:"Store the password in the system keyring for later runs."`
}

func (c *ImportCmd) Run(app *appContext) error {
	return app.withBook(func(ab *book.AddressBook) error {
		r, err := c.open(app)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		added, err := storage.Import(app.ctx, ab, r)
		if err != nil {
			return err
		}
		fmt.Printf(config.MsgImportedCount, added)
		return nil
	})
}

// open resolves the import source, consulting the keyring for remote
// credentials when no password is given on the command line.
func (c *ImportCmd) open(app *appContext) (io.ReadCloser, error) {
	if !strings.HasPrefix(c.Source, config.SchemeHTTP+"://") &&
		!strings.HasPrefix(c.Source, config.SchemeHTTPS+"://") {
		if ext := strings.ToLower(filepath.Ext(c.Source)); ext != config.ExtVCF && ext != config.ExtVCard {
			slog.Warn(config.MsgOddExtension,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyPath, c.Source,
			)
		}
		return os.Open(c.Source)
	}

	pass := c.Pass
	if pass == "" && c.User != "" {
		stored, err := keyring.Get(config.KeyringService, c.User)
		if err != nil {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyUser, c.User,
				config.LogKeyError, err,
			)
		} else {
			pass = stored
		}
	}

	if c.SaveCredentials && c.User != "" && c.Pass != "" {
		if err := keyring.Set(config.KeyringService, c.User, c.Pass); err != nil {
			slog.Error(config.MsgPassSaveFail,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
	}

	return storage.NewHTTPFetcher().Fetch(app.ctx, c.Source, c.User, pass)
}

// ServeCmd publishes the birthday calendar as a local ICS feed.
type ServeCmd struct {
	Port     string `help:"Port to listen on." default:"${default_port}"`
	Reminder string `help:"ISO 8601 alarm trigger added to each event (e.g. -P1D)."`
}

func (c *ServeCmd) Run(app *appContext) error {
	ab, err := app.store.Load()
	if err != nil {
		return err
	}

	builder := &calendar.Builder{
		Clock:         app.clock,
		FormatSummary: app.summaryFormatter(),
	}
	ics, _, err := builder.Build(ab, c.Reminder)
	if err != nil {
		return err
	}

	srv := server.NewFeedServer(c.Port)
	srv.Update(ics)
	return srv.Start(app.ctx)
}

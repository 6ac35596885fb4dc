package calendar

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// Builder renders an address book's birthdays as an iCalendar feed.
type Builder struct {
	Clock book.Clock // Interface for time mocking.

	// FormatSummary allows the caller to inject localized event summaries.
	// Receives the contact name and the age the person turns.
	FormatSummary func(name string, age int) string
}

// Build produces ICS data for the book and the count of birthdays falling
// today. Each contact with a birthday yields one all-day event dated at its
// next congratulation date, so weekend birthdays appear on the Monday the
// greeting is due.
func (b *Builder) Build(ab *book.AddressBook, reminderTrigger string) ([]byte, int, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompCalendar)

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: suggest a refresh interval to consuming clients.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Birthdays are defined by the local calendar date of the person, so the
	// local clock drives the logic; only the ICS stamp is converted to UTC.
	now := b.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	stats := struct{ total, withBday, today int }{}
	todayYear, todayMonth, todayDay := now.Date()

	for _, rec := range ab.Records() {
		stats.total++
		bday, ok := rec.Birthday()
		if !ok {
			continue
		}
		stats.withBday++

		name := rec.Name().String()
		occurrence := bday.Next(now)
		congratulation := bday.NextCongratulation(now)
		age := occurrence.Year() - bday.Date().Year()

		if occurrence.Year() == todayYear && occurrence.Month() == todayMonth && occurrence.Day() == todayDay {
			stats.today++
			log.Info(config.MsgBdayToday,
				config.LogKeyName, name,
				config.LogKeyDOB, bday.Date().Format(config.DateFormatVCard),
			)
		}

		summary := fmt.Sprintf(config.FallbackSummary, name)
		if b.FormatSummary != nil {
			summary = b.FormatSummary(name, age)
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, eventUID(name, bday, occurrence.Year()))
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(congratulation)
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		// A valid empty VCALENDAR keeps clients from flagging the feed.
		logStats(log, stats)
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	logStats(log, stats)
	log.Debug("Calendar built", config.LogKeyDuration, time.Since(start).Milliseconds())
	return buf.Bytes(), stats.today, nil
}

func logStats(log *slog.Logger, stats struct{ total, withBday, today int }) {
	log.Info(config.MsgGenSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.total),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// eventUID derives a deterministic identifier so events stay stable across
// rebuilds of the feed.
func eventUID(name string, bday book.Birthday, year int) string {
	input := fmt.Sprintf(config.FormatHashInput, name, bday.Date().Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	base := fmt.Sprintf("%x", hash[:config.UIDHashLength])
	return fmt.Sprintf(config.FormatUID, base, year, config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid a "VALUE=TEXT" param.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
)

// Generator renders the register's birthdays as an iCalendar feed.
type Generator struct {
	Clock register.Clock

	// ReminderTrigger is an ISO-8601 duration (e.g. "-P1D"); empty disables alarms.
	ReminderTrigger string

	// FormatSummary lets the CLI inject localized event titles.
	FormatSummary func(name string, age int) string
}

// Calendar builds the ICS document for members and reports how many birthdays fall today.
func (g *Generator) Calendar(members []register.Member) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Birthdays follow the local calendar; only DTSTAMP is UTC.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, m := range members {
		if m.Birthday.IsZero() {
			continue
		}

		events, isToday := g.createEvents(m, now)
		if isToday {
			today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, m.ID,
				config.LogKeyDOB, m.Birthday.String())
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// An empty VCALENDAR is still served so clients do not flag the feed as invalid.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyCount, len(cal.Children)),
			slog.Int(config.LogKeyToday, today),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds())

	return buf.Bytes(), today, nil
}

// createEvents emits events for the previous, current and next year so calendar
// clients can scroll without a refresh. Years before birth are skipped.
func (g *Generator) createEvents(m register.Member, now time.Time) ([]*ical.Event, bool) {
	currentYear := now.Year()
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()
	uidBase := eventUIDBase(m)

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if y < m.Birthday.Year {
			continue
		}
		age := y - m.Birthday.Year

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, m.ID, y, config.ICalDomain))

		summary := g.summary(m.Name, age)
		event.Props.SetText(config.PropSummary, summary)

		eventDate := time.Date(y, m.Birthday.Month, m.Birthday.Day, 0, 0, 0, 0, loc)
		if y == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if g.ReminderTrigger != "" {
			addAlarm(event, g.ReminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

func (g *Generator) summary(name string, age int) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, age)
	}
	if age == 0 {
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	}
	return fmt.Sprintf(config.FallbackSummaryAge, name, age)
}

// eventUIDBase is stable across refreshes as long as name and birthday do not change.
func eventUIDBase(m register.Member) string {
	input := fmt.Sprintf(config.FormatHashInput, m.Name, m.Birthday.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value to avoid a VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

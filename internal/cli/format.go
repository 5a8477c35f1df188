package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
	"github.com/tartampluch/go-register/internal/register"
)

const (
	ruleWidth  = 60
	labelWidth = 10
)

func rule(w io.Writer) {
	_, _ = fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
}

func header(w io.Writer, title string) {
	line := strings.Repeat("=", ruleWidth)
	pad := max(0, (ruleWidth-len([]rune(title)))/2)
	_, _ = fmt.Fprintf(w, "%s\n%s%s\n%s\n", line, strings.Repeat(" ", pad), title, line)
}

// printMember writes the card shown by show, list and search.
func (a *App) printMember(w io.Writer, m register.Member) {
	field := func(key, value string) {
		if value == "" {
			return
		}
		_, _ = fmt.Fprintf(w, "%-*s: %s\n", labelWidth, a.tr.T(key, nil), value)
	}

	field(config.TKeyLblID, strconv.Itoa(m.ID))
	rule(w)
	field(config.TKeyLblName, m.Name)
	field(config.TKeyLblPhone, m.Phone)
	field(config.TKeyLblEmail, m.Email)
	field(config.TKeyLblAddress, m.Address)
	field(config.TKeyLblBirthday, m.Birthday.String())
	field(config.TKeyLblPhoto, m.Photo)
	if !m.JoinedAt.IsZero() {
		field(config.TKeyLblJoined, m.JoinedAt.Local().Format(config.DateFormatDisplay))
	}
	rule(w)
	_, _ = fmt.Fprintln(w)
}

// printCandidates lists members sharing a name, one line each, so the user can pick an id.
func (a *App) printCandidates(w io.Writer, name string, members []register.Member) {
	_, _ = fmt.Fprintln(w, a.tr.T(config.TKeyNameCandidates, map[string]any{"Name": name}))
	for _, m := range members {
		details := []string{m.Phone, m.Birthday.String()}
		_, _ = fmt.Fprintf(w, "  [%d] %s  %s\n", m.ID, m.Name, strings.TrimSpace(strings.Join(details, "  ")))
	}
}

// ageTransition renders "25 → 26", or the localized birth label for age 0.
func (a *App) ageTransition(next int) string {
	if next <= 0 {
		return a.tr.T(config.TKeyAgeBirth, nil)
	}
	return fmt.Sprintf("%d → %d", next-1, next)
}

func (a *App) dueLabel(days int) string {
	if days == 0 {
		return a.tr.T(config.TKeyBdayToday, nil)
	}
	return a.tr.Plural(config.TKeyBdayInDays, days)
}

// printReminders writes the birthday table, nearest first.
func (a *App) printReminders(w io.Writer, reminders []engine.Reminder) {
	header(w, a.tr.T(config.TKeyBdayHeader, nil))
	if len(reminders) == 0 {
		_, _ = fmt.Fprintln(w, a.tr.T(config.TKeyBdayNone, nil))
		return
	}

	layout := a.tr.T(config.TKeyFormatDate, nil)
	if layout == config.TKeyFormatDate {
		layout = config.DateFormatDisplay
	}
	for _, r := range reminders {
		_, _ = fmt.Fprintf(w, "%-14s %-8s %-28s %s\n",
			a.dueLabel(r.DaysUntil),
			r.NextOccurrence.Format(layout),
			r.Name,
			a.ageTransition(r.AgeNext))
	}
}

// parseDateFlag reads a DD-MM-YYYY reference date in loc.
func parseDateFlag(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(config.DateFormatBirthday, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, &register.ValidationError{Field: config.FlagDate, Reason: config.ErrInvalidDate}
	}
	return t, nil
}

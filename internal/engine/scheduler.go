package engine

import (
	"cmp"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Reminder is one upcoming birthday inside the lookahead window.
type Reminder struct {
	// DaysUntil is 0 when the birthday is on the reference day.
	DaysUntil int

	Name     string
	MemberID int

	// NextOccurrence is midnight of the birthday, in the reference date's location.
	NextOccurrence time.Time

	// AgeNext is the age reached on NextOccurrence.
	AgeNext int
}

// Upcoming yields members whose next birthday falls within config.LookaheadDays
// of ref (both ends inclusive), nearest first. Ties are ordered by name using
// English collation with case ignored, then by member id.
//
// A 29 February birthday occurs on 1 March in common years. Members born
// after the next occurrence are skipped.
func Upcoming(members []register.Member, ref time.Time) iter.Seq[Reminder] {
	var out []Reminder
	for _, m := range members {
		if m.Birthday.IsZero() {
			continue
		}
		next, age := NextOccurrence(ref, m.Birthday)
		if next.Year() < m.Birthday.Year {
			continue
		}
		days := daysBetween(ref, next)
		if days < 0 || days > config.LookaheadDays {
			continue
		}
		out = append(out, Reminder{
			DaysUntil:      days,
			Name:           m.Name,
			MemberID:       m.ID,
			NextOccurrence: next,
			AgeNext:        age,
		})
	}

	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b Reminder) int {
		return cmp.Or(
			cmp.Compare(a.DaysUntil, b.DaysUntil),
			col.CompareString(a.Name, b.Name),
			cmp.Compare(a.MemberID, b.MemberID),
		)
	})

	slog.Debug(config.MsgSchedulerRun,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRef, ref.Format(config.DateFormatBirthday),
		config.LogKeyCount, len(out))

	return slices.Values(out)
}

// CountToday returns how many reminders fall on the reference day.
func CountToday(reminders iter.Seq[Reminder]) int {
	n := 0
	for r := range reminders {
		if r.DaysUntil == 0 {
			n++
		}
	}
	return n
}

// NextOccurrence returns the first date on or after ref's calendar day that
// matches the birthday's month and day, and the age reached on it.
func NextOccurrence(ref time.Time, b register.Birthday) (time.Time, int) {
	loc := ref.Location()
	year := ref.Year()

	// time.Date normalizes 29 February to 1 March in common years.
	candidate := time.Date(year, b.Month, b.Day, 0, 0, 0, 0, loc)
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	if candidate.Before(today) {
		year++
		candidate = time.Date(year, b.Month, b.Day, 0, 0, 0, 0, loc)
	}
	return candidate, year - b.Year
}

// daysBetween counts calendar days from ref's day to target's day.
// Dates are moved to UTC first so a DST transition cannot shorten a day.
func daysBetween(ref, target time.Time) int {
	from := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

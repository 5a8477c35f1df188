package register

import (
	"strings"
	"time"

	"github.com/tartampluch/go-register/internal/config"
)

// Birthday is a calendar day-month-year triple. The zero value means "unknown".
type Birthday struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseBirthday parses a DD-MM-YYYY string. The empty string yields the zero Birthday.
// Impossible dates (31-04, 29-02 in a common year, month 13) are rejected.
func ParseBirthday(s string) (Birthday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Birthday{}, nil
	}
	t, err := time.Parse(config.DateFormatBirthday, s)
	if err != nil {
		return Birthday{}, &ValidationError{Field: config.FlagBirthday, Reason: config.ErrInvalidDate}
	}
	return BirthdayOf(t), nil
}

// BirthdayOf extracts the calendar date of t in its own location.
func BirthdayOf(t time.Time) Birthday {
	y, m, d := t.Date()
	return Birthday{Year: y, Month: m, Day: d}
}

// IsZero reports whether the birthday is unknown.
func (b Birthday) IsZero() bool {
	return b == Birthday{}
}

// Time returns midnight of the birthday in loc.
func (b Birthday) Time(loc *time.Location) time.Time {
	return time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, loc)
}

// String formats the birthday as DD-MM-YYYY, or "" when unknown.
func (b Birthday) String() string {
	if b.IsZero() {
		return ""
	}
	return b.Time(time.UTC).Format(config.DateFormatBirthday)
}

// MarshalText implements encoding.TextMarshaler.
func (b Birthday) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Birthday) UnmarshalText(text []byte) error {
	parsed, err := ParseBirthday(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
)

// ImportStats summarizes a vCard decoding pass.
type ImportStats struct {
	Processed int
	Accepted  int
	Skipped   int
}

// DecodeContacts turns a vCard stream into register candidates.
// Malformed cards and cards without a usable name are skipped, not fatal.
func DecodeContacts(ctx context.Context, r io.Reader) ([]register.Candidate, ImportStats, error) {
	decoder := vcard.NewDecoder(r)
	var stats ImportStats
	var out []register.Candidate

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			stats.Skipped++
			continue
		}
		stats.Processed++

		c := register.Candidate{
			Name:    cardName(card),
			Phone:   card.PreferredValue(vcard.FieldTelephone),
			Email:   card.PreferredValue(vcard.FieldEmail),
			Address: cardAddress(card),
		}

		if raw := strings.TrimSpace(card.Value(vcard.FieldBirthday)); raw != "" {
			b, err := parseVCardDate(raw)
			switch {
			case errors.Is(err, errNoYear):
				slog.Debug(config.MsgSkippedNoYear,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyName, c.Name)
			case err != nil:
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyValue, raw)
			default:
				c.Birthday = b
			}
		}

		if err := c.Validate(); err != nil {
			slog.Warn(config.MsgSkippedInvalid,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, c.Name,
				config.LogKeyError, err)
			stats.Skipped++
			continue
		}

		out = append(out, c)
		stats.Accepted++
	}

	return out, stats, nil
}

// cardName prefers FN, then the structured N, then a fallback.
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		parts := []string{n.HonorificPrefix, n.GivenName, n.AdditionalName, n.FamilyName, n.HonorificSuffix}
		if name := joinNonEmpty(parts, " "); name != "" {
			return name
		}
	}
	return config.FallbackName
}

func cardAddress(card vcard.Card) string {
	a := card.Address()
	if a == nil {
		return ""
	}
	return joinNonEmpty([]string{
		a.PostOfficeBox, a.ExtendedAddress, a.StreetAddress,
		a.Locality, a.Region, a.PostalCode, a.Country,
	}, ", ")
}

func joinNonEmpty(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

var errNoYear = errors.New("birthday has no year")

// parseVCardDate handles the BDAY layouts found in the wild.
// Year-less dates (--MMDD, --MM-DD) cannot become a Birthday and return errNoYear.
func parseVCardDate(value string) (register.Birthday, error) {
	if strings.HasPrefix(value, config.VCardNoYearPrefix) {
		return register.Birthday{}, errNoYear
	}

	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
		config.DateFormatBirthday,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return register.BirthdayOf(t), nil
		}
	}
	return register.Birthday{}, errors.New(config.ErrDateParse)
}

// EncodeMembers writes members as vCard 4.0 cards.
func EncodeMembers(w io.Writer, members []register.Member) error {
	enc := vcard.NewEncoder(w)
	for _, m := range members {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldVersion, config.VCardVersion)
		card.SetValue(vcard.FieldFormattedName, m.Name)
		card.SetValue(vcard.FieldUID, fmt.Sprintf(config.FormatUID, eventUIDBase(m), m.ID, 0, config.ICalDomain))
		if m.Phone != "" {
			card.SetValue(vcard.FieldTelephone, m.Phone)
		}
		if m.HasEmail() {
			card.SetValue(vcard.FieldEmail, m.Email)
		}
		if m.Address != "" {
			card.AddAddress(&vcard.Address{StreetAddress: m.Address})
		}
		if !m.Birthday.IsZero() {
			card.SetValue(vcard.FieldBirthday, m.Birthday.Time(time.UTC).Format(config.DateFormatFullBasic))
		}
		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

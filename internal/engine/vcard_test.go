package engine_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
	"github.com/tartampluch/go-register/internal/register"
)

func decode(t *testing.T, content string) ([]register.Candidate, engine.ImportStats) {
	t.Helper()
	got, stats, err := engine.DecodeContacts(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	return got, stats
}

func TestDecodeContacts_Fields(t *testing.T) {
	content := "BEGIN:VCARD\r\n" +
		"VERSION:3.0\r\n" +
		"FN:Ngozi Okafor\r\n" +
		"TEL;TYPE=CELL:08031234567\r\n" +
		"EMAIL:ngozi@example.org\r\n" +
		"ADR;TYPE=HOME:;;12 Church Road;Enugu;;400001;Nigeria\r\n" +
		"BDAY:1988-07-14\r\n" +
		"END:VCARD\r\n"

	got, stats := decode(t, content)
	require.Len(t, got, 1)
	assert.Equal(t, engine.ImportStats{Processed: 1, Accepted: 1}, stats)

	c := got[0]
	assert.Equal(t, "Ngozi Okafor", c.Name)
	assert.Equal(t, "08031234567", c.Phone)
	assert.Equal(t, "ngozi@example.org", c.Email)
	assert.Equal(t, "12 Church Road, Enugu, 400001, Nigeria", c.Address)
	assert.Equal(t, register.Birthday{Year: 1988, Month: time.July, Day: 14}, c.Birthday)
}

func TestDecodeContacts_NameFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"structured N", "BEGIN:VCARD\nVERSION:3.0\nN:Eze;Chinedu;;Mr.;\nEND:VCARD\n", "Mr. Chinedu Eze"},
		{"nothing", "BEGIN:VCARD\nVERSION:3.0\nTEL:123\nEND:VCARD\n", config.FallbackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := decode(t, tt.content)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Name)
		})
	}
}

func TestDecodeContacts_DateFormats(t *testing.T) {
	want := register.Birthday{Year: 1990, Month: time.October, Day: 25}
	tests := []struct {
		name      string
		bdayValue string
		want      register.Birthday
	}{
		{"ISO8601", "1990-10-25", want},
		{"basic", "19901025", want},
		{"RFC3339", "1990-10-25T00:00:00Z", want},
		{"register layout", "25-10-1990", want},
		{"no year dashed", "--10-25", register.Birthday{}},
		{"no year basic", "--1025", register.Birthday{}},
		{"garbage", "not-a-date", register.Birthday{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := decode(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:"+tt.bdayValue+"\nEND:VCARD\n")
			require.Len(t, got, 1, "a bad birthday never drops the contact")
			assert.Equal(t, tt.want, got[0].Birthday)
			assert.Zero(t, stats.Skipped)
		})
	}
}

func TestDecodeContacts_SkipsInvalidEmail(t *testing.T) {
	content := "BEGIN:VCARD\nVERSION:3.0\nFN:Bad Mail\nEMAIL:not an address\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:Good\nEND:VCARD\n"

	got, stats := decode(t, content)
	require.Len(t, got, 1)
	assert.Equal(t, "Good", got[0].Name)
	assert.Equal(t, engine.ImportStats{Processed: 2, Accepted: 1, Skipped: 1}, stats)
}

func TestDecodeContacts_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := engine.DecodeContacts(ctx, strings.NewReader("BEGIN:VCARD\nVERSION:3.0\nFN:X\nEND:VCARD\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeMembers(t *testing.T) {
	members := []register.Member{
		{
			ID: 1, Name: "Ada Obi", Phone: "0800", Email: "ada@example.org",
			Address: "1 Market Street", Birthday: mustBirthday(t, "09-11-1975"),
		},
		{ID: 2, Name: "No Mail", Email: config.EmailNotProvided},
	}

	var buf bytes.Buffer
	require.NoError(t, engine.EncodeMembers(&buf, members))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VCARD"))
	assert.Contains(t, out, "VERSION:4.0")
	assert.Contains(t, out, "FN:Ada Obi")
	assert.Contains(t, out, "TEL:0800")
	assert.Contains(t, out, "EMAIL:ada@example.org")
	assert.Contains(t, out, "BDAY:19751109")
	assert.NotContains(t, out, config.EmailNotProvided, "the marker is not an address")
}

// TestEncodeDecode_RoundTrip checks an export can be imported back.
func TestEncodeDecode_RoundTrip(t *testing.T) {
	members := []register.Member{{
		ID: 4, Name: "Round Trip", Phone: "555", Email: "rt@example.org",
		Address: "2 Loop Lane", Birthday: mustBirthday(t, "29-02-2000"),
	}}

	var buf bytes.Buffer
	require.NoError(t, engine.EncodeMembers(&buf, members))

	got, _ := decode(t, buf.String())
	require.Len(t, got, 1)
	assert.Equal(t, register.Candidate{
		Name: "Round Trip", Phone: "555", Email: "rt@example.org",
		Address: "2 Loop Lane", Birthday: members[0].Birthday,
	}, got[0])
}

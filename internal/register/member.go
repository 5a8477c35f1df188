package register

import (
	"strings"
	"time"

	"github.com/mcnijman/go-emailaddress"
	"github.com/tartampluch/go-register/internal/config"
	"go.uber.org/multierr"
)

// Member is one registered person. JSON keys are read by tools outside this
// program (the online portal), so they must not change.
type Member struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Address  string    `json:"address"`
	Birthday Birthday  `json:"birthday"`
	Photo    string    `json:"photo"`
	JoinedAt time.Time `json:"joined"`
}

// HasEmail reports whether a real address was recorded.
func (m Member) HasEmail() bool {
	return m.Email != "" && m.Email != config.EmailNotProvided
}

// Candidate holds the user-supplied fields of a member about to be added.
type Candidate struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Birthday Birthday
	Photo    string
}

// Normalize trims every text field and applies the email marker default.
func (c Candidate) Normalize() Candidate {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.Photo = strings.TrimSpace(c.Photo)
	if c.Email == "" {
		c.Email = config.EmailNotProvided
	}
	return c
}

// Validate returns every problem found, combined with multierr.
// Each part is a *ValidationError.
func (c Candidate) Validate() error {
	var err error
	if strings.TrimSpace(c.Name) == "" {
		err = multierr.Append(err, &ValidationError{Field: config.FlagName, Reason: config.ErrNameRequired})
	}

	if !c.Birthday.IsZero() && BirthdayOf(c.Birthday.Time(time.UTC)) != c.Birthday {
		err = multierr.Append(err, &ValidationError{Field: config.FlagBirthday, Reason: config.ErrInvalidDate})
	}

	email := strings.TrimSpace(c.Email)
	if email != "" && email != config.EmailNotProvided {
		if _, perr := emailaddress.Parse(email); perr != nil {
			err = multierr.Append(err, &ValidationError{Field: config.FlagEmail, Reason: config.ErrInvalidEmail})
		}
	}
	return err
}

// member builds the stored record from a normalized candidate.
func (c Candidate) member(id int, joined time.Time) Member {
	return Member{
		ID:       id,
		Name:     c.Name,
		Phone:    c.Phone,
		Email:    c.Email,
		Address:  c.Address,
		Birthday: c.Birthday,
		Photo:    c.Photo,
		JoinedAt: joined,
	}
}

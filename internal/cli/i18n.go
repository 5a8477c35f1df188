package cli

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-register/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves user-facing strings for one language.
type Translator struct {
	localizer *i18n.Localizer
}

// NewTranslator loads every embedded active.<lang>.json bundle and selects lang.
// Unknown languages fall back to English through the bundle's default.
func NewTranslator(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return &Translator{}
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}
		if strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json") == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}

	return &Translator{
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}
}

// T translates key with optional template data. A missing key yields the key itself.
func (t *Translator) T(key string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// Plural translates a key that has one/other forms.
func (t *Translator) Plural(key string, count int) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(lc *i18n.LocalizeConfig) string {
	if t == nil || t.localizer == nil {
		return lc.MessageID
	}
	msg, err := t.localizer.Localize(lc)
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return lc.MessageID
	}
	return msg
}

// SummaryFormatter builds localized calendar event titles.
func (t *Translator) SummaryFormatter() func(name string, age int) string {
	return func(name string, age int) string {
		var key string
		data := map[string]any{"Name": name, "Age": age}
		if age == 0 {
			key = config.TKeyEvtSummaryBirth
		} else {
			key = config.TKeyEvtSummaryAge
		}

		msg := t.T(key, data)
		if msg != key {
			return msg
		}
		if age == 0 {
			return fmt.Sprintf(config.FallbackSummaryBirth, name)
		}
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}

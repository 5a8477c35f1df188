package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-register/internal/config"
)

var translationKeys = []string{
	config.TKeyMemberAdded,
	config.TKeyMemberRemoved,
	config.TKeyMemberNotFound,
	config.TKeyNoMembers,
	config.TKeyAllMembers,
	config.TKeySearchResults,
	config.TKeyNameCandidates,
	config.TKeyLblID,
	config.TKeyLblName,
	config.TKeyLblPhone,
	config.TKeyLblEmail,
	config.TKeyLblAddress,
	config.TKeyLblBirthday,
	config.TKeyLblPhoto,
	config.TKeyLblJoined,
	config.TKeyBdayHeader,
	config.TKeyBdayNone,
	config.TKeyBdayToday,
	config.TKeyBdayInDays,
	config.TKeyAgeBirth,
	config.TKeyImportDone,
	config.TKeyExportDone,
	config.TKeySnapshotWritten,
	config.TKeyPublishDone,
	config.TKeyServeListening,
	config.TKeyCredSaved,
	config.TKeyCredDeleted,
	config.TKeyPasswordPrompt,
	config.TKeyEvtSummaryAge,
	config.TKeyEvtSummaryBirth,
	config.TKeyFormatDate,
}

// TestI18nIntegrity checks every key used by the code exists in each locale file,
// and that no locale carries keys the code never asks for.
func TestI18nIntegrity(t *testing.T) {
	defined := make(map[string]bool, len(translationKeys))
	for _, k := range translationKeys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for key := range defined {
				v, exists := jsonMap[key]
				if !assert.Truef(t, exists, "key %q is missing", key) {
					continue
				}
				if plural, ok := v.(map[string]any); ok {
					assert.Contains(t, plural, "other", "plural %q needs an 'other' form", key)
				}
			}

			for key := range jsonMap {
				if strings.HasPrefix(key, "_") {
					continue
				}
				assert.Truef(t, defined[key], "key %q is not used by the code", key)
			}
		})
	}
}

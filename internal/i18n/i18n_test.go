package i18n_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/i18n"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale JSON file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeyEvtSummary,
		config.TKeyEvtSummaryAge,
		config.TKeyEvtSummaryBirth,
		config.TKeyBirthdaysHeader,
		config.TKeyBirthdaysNone,
	}

	for _, lang := range config.SupportedLanguages {
		path := "locales/active." + lang + ".json"
		content, err := os.ReadFile(path)
		require.NoErrorf(t, err, "Must load %s", path)

		var jsonMap map[string]interface{}
		require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

		for _, key := range keysToCheck {
			_, exists := jsonMap[key]
			assert.Truef(t, exists, "Key %q defined in config.go is missing in %s", key, path)
		}
	}
}

func TestTranslator_Msg(t *testing.T) {
	tr := i18n.New("en")

	assert.Equal(t, "Upcoming birthdays:", tr.Msg(config.TKeyBirthdaysHeader))
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages)
}

func TestTranslator_MsgData_TemplateFill(t *testing.T) {
	tr := i18n.New("en")

	got := tr.MsgData(config.TKeyEvtSummaryAge, map[string]any{"Name": "Jack", "Age": 24})
	assert.Equal(t, "Birthday: Jack (24)", got)
}

func TestTranslator_FrenchLocale(t *testing.T) {
	tr := i18n.New("fr")

	got := tr.MsgData(config.TKeyEvtSummary, map[string]any{"Name": "Jack"})
	assert.Equal(t, "Anniversaire : Jack", got)
}

func TestTranslator_MissingKeyFallsBackToKey(t *testing.T) {
	tr := i18n.New("en")

	assert.Equal(t, "no_such_key", tr.Msg("no_such_key"))
}

func TestTranslator_UnknownLanguageFallsBackToDefault(t *testing.T) {
	tr := i18n.New("xx")

	assert.Equal(t, "Upcoming birthdays:", tr.Msg(config.TKeyBirthdaysHeader))
}

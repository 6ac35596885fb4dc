package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-addressbook/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys to localized strings for CLI output and
// calendar event summaries. Missing keys fall back to the key itself so a
// translation gap never breaks output.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer

	// Languages lists the locale codes detected in the embedded files.
	Languages []string
}

// New initializes the translation bundle from the embedded locales and
// selects the given language, falling back to the default when empty.
func New(lang string) *Translator {
	t := &Translator{}
	t.bundle = goi18n.NewBundle(language.English)
	t.bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return t
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

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := t.bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = goi18n.NewLocalizer(t.bundle, lang, config.DefaultLanguage)
	return t
}

// Msg translates a key without template data.
func (t *Translator) Msg(key string) string {
	return t.MsgData(key, nil)
}

// MsgData translates a key, filling in template data.
func (t *Translator) MsgData(key string, data map[string]any) string {
	if t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Package i18n resolves user-facing strings for the system language, falling
// back to English and finally to the message key itself.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeandeaual/go-locale"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/atomicstack/quicklaunch/internal/logging"
)

//go:embed locales/*.toml
var catalogues embed.FS

// Catalog looks up messages for one resolved language.
type Catalog struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	tag       language.Tag
}

// New loads the embedded catalogues. lang overrides the system language
// when non-empty.
func New(lang string) (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := catalogues.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}
	for _, f := range files {
		name := path.Join("locales", f.Name())
		data, err := catalogues.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: %w", err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
	}

	preferred := preferredLanguages(lang)
	tag := language.English
	if len(preferred) > 0 {
		if parsed, err := language.Parse(preferred[0]); err == nil {
			tag = parsed
		}
	}
	return &Catalog{
		bundle:    bundle,
		localizer: goi18n.NewLocalizer(bundle, preferred...),
		tag:       tag,
	}, nil
}

// MustNew is New for callers that cannot continue without strings. The
// catalogues are embedded, so failure means a broken build.
func MustNew(lang string) *Catalog {
	c, err := New(lang)
	if err != nil {
		panic(err)
	}
	return c
}

func preferredLanguages(override string) []string {
	if override = strings.TrimSpace(override); override != "" {
		return []string{override}
	}
	locales, err := locale.GetLocales()
	if err != nil {
		logging.Warn("i18n", "system locale unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return locales
}

// Language returns the first preferred language.
func (c *Catalog) Language() language.Tag { return c.tag }

// Text returns the message for key in the preferred language, the English
// message when no translation exists, or key when neither does. args are
// applied with fmt.Sprintf.
func (c *Catalog) Text(key string, args ...interface{}) string {
	if c == nil {
		return format(key, args)
	}
	msg, err := c.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if msg == "" {
		if err != nil && logging.TraceEnabled() {
			logging.Trace("i18n.missing", map[string]interface{}{"key": key})
		}
		return key
	}
	return format(msg, args)
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Package i18n provides localized strings for checkout surfaces.
package i18n

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer renders user-facing checkout strings for one locale.
// The zero value is not usable; construct one with New, Parse, or Default.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
	titler  cases.Caser
}

// New creates a localizer for the given language tag.
func New(tag language.Tag) Localizer {
	return Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag),
		titler:  cases.Title(tag),
	}
}

// Default returns the English localizer.
func Default() Localizer {
	return New(language.English)
}

// Parse resolves a BCP 47 locale string like "de" or "en-US".
func Parse(locale string) (Localizer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Localizer{}, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return New(tag), nil
}

// T renders a message by key with printf-style arguments. Keys without a
// catalog entry for the locale fall back to the key itself, which doubles
// as the English message.
func (l Localizer) T(key string, args ...interface{}) string {
	return l.printer.Sprintf(key, args...)
}

// Title renders s in title case for the localizer's language.
func (l Localizer) Title(s string) string {
	return l.titler.String(s)
}

// Tag returns the locale tag.
func (l Localizer) Tag() language.Tag {
	return l.tag
}

// IsZero reports whether the localizer was never constructed.
func (l Localizer) IsZero() bool {
	return l.printer == nil
}

package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-dynform/pkg/catalog"
)

const (
	// LabelKeyMetadata names the master field metadata entry holding the
	// translation key of the field label.
	LabelKeyMetadata = "labelKey"
	// OptionKeyPrefixMetadata names the metadata entry whose value, joined with
	// an option, yields the translation key of that option's display text.
	OptionKeyPrefixMetadata = "optionKeyPrefix"
	// OptionLabelsMetadata collects translated option labels as
	// "option=label" pairs separated by '|'.
	OptionLabelsMetadata = "optionLabels"
)

// ErrMissingTranslator reports a translation key with no translator configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves a translation key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls fn.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler picks the text used when a key cannot be
// translated. fallback is the untranslated text and may be empty.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

func missingTranslationDefault(_ string, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// Localizer translates master field labels that carry a label key.
type Localizer struct {
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// Fields returns a localized copy of fields. Fields without translation keys
// are copied unchanged; option values are never rewritten because they are
// submitted as is.
func (l *Localizer) Fields(fields []catalog.MasterField) []catalog.MasterField {
	out := catalog.CloneFields(fields)
	if l == nil {
		return out
	}
	for i := range out {
		l.field(&out[i])
	}
	return out
}

func (l *Localizer) field(field *catalog.MasterField) {
	if key := strings.TrimSpace(field.Metadata[LabelKeyMetadata]); key != "" {
		field.Label = l.translate(key, field.Label)
	}
	prefix := strings.TrimSpace(field.Metadata[OptionKeyPrefixMetadata])
	if prefix == "" || len(field.Options) == 0 {
		return
	}
	pairs := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		pairs = append(pairs, option+"="+l.translate(prefix+option, option))
	}
	if field.Metadata == nil {
		field.Metadata = make(map[string]string)
	}
	field.Metadata[OptionLabelsMetadata] = strings.Join(pairs, "|")
}

func (l *Localizer) translate(key, fallback string) string {
	onMissing := l.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if l.Translator == nil {
		return onMissing(l.Locale, key, fallback, ErrMissingTranslator)
	}
	result, err := l.Translator.Translate(l.Locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(l.Locale, key, fallback, err)
}

// OptionLabels decodes OptionLabelsMetadata into an option to label map.
func OptionLabels(field catalog.MasterField) map[string]string {
	raw := field.Metadata[OptionLabelsMetadata]
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, "|") {
		option, label, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[option] = label
	}
	return out
}

package registry

import "errors"

// DefaultLanguage is the fallback when a request names no or an unknown
// language key.
const DefaultLanguage = "german"

// ErrUnknownLanguage is returned for language keys absent from the registry.
// Callers on the request path clamp to DefaultLanguage instead of
// propagating it.
var ErrUnknownLanguage = errors.New("unknown language")

// Language holds the locale metadata for one target language.
type Language struct {
	Key          string
	Code         string // ISO 639-1, used for translation
	SpeechLocale string // BCP-47, used for speech recognition and synthesis
	Label        string
	Flag         string
}

// languages is the static language table, read-only after process start.
var languages = map[string]Language{
	"german":     {Key: "german", Code: "de", SpeechLocale: "de-DE", Label: "Deutsch", Flag: "🇩🇪"},
	"english":    {Key: "english", Code: "en", SpeechLocale: "en-US", Label: "English", Flag: "🇺🇸"},
	"swedish":    {Key: "swedish", Code: "sv", SpeechLocale: "sv-SE", Label: "Svenska", Flag: "🇸🇪"},
	"french":     {Key: "french", Code: "fr", SpeechLocale: "fr-FR", Label: "Français", Flag: "🇫🇷"},
	"italian":    {Key: "italian", Code: "it", SpeechLocale: "it-IT", Label: "Italiano", Flag: "🇮🇹"},
	"spanish":    {Key: "spanish", Code: "es", SpeechLocale: "es-ES", Label: "Español", Flag: "🇪🇸"},
	"portuguese": {Key: "portuguese", Code: "pt", SpeechLocale: "pt-PT", Label: "Português", Flag: "🇵🇹"},
	"albanian":   {Key: "albanian", Code: "sq", SpeechLocale: "sq-AL", Label: "Shqip", Flag: "🇽🇰"},
	"turkish":    {Key: "turkish", Code: "tr", SpeechLocale: "tr-TR", Label: "Türkçe", Flag: "🇹🇷"},
	"macedonian": {Key: "macedonian", Code: "mk", SpeechLocale: "mk-MK", Label: "Македонски", Flag: "🇲🇰"},
	"ukrainian":  {Key: "ukrainian", Code: "uk", SpeechLocale: "uk-UA", Label: "Українська", Flag: "🇺🇦"},
	"hindi":      {Key: "hindi", Code: "hi", SpeechLocale: "hi-IN", Label: "हिन्दी", Flag: "🇮🇳"},
}

// Package registry holds the static language and scenario tables. Entries
// are loaded once at process start and read-only afterwards; per-session
// scenario overrides live on the session, never here.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/loquilab/loqui-server/domain/entities"
)

// ErrUnknownScenario is returned for scenario names absent from prompts.yaml.
var ErrUnknownScenario = errors.New("unknown scenario")

// Proficiency levels accepted by the analysis and conversation prompts.
const (
	LevelBeginner = "beginner"
	LevelAdvanced = "advanced"
)

const (
	beginnerPrompt = "You are a language teacher playing a role play at easy reader level 1-2, your role will be defined later. " +
		"Respond concisely with short 1 to 2 sentences. " +
		"Encourage simple conversations, do not ask too many questions. " +
		"Do not reveal unnecessary information unless the user asks directly. " +
		"Use emojis when appropriate to make the conversation engaging!"

	advancedPrompt = "You are a language teacher playing a role play at easy reader level 3-4, your role will be defined later. " +
		"Respond in 2 to 3 sentences, using more complex sentence structures and vocabulary. " +
		"Encourage meaningful discussions but do not reveal details unless the user explicitly asks. " +
		"Use emojis when appropriate to make the conversation engaging!"
)

// Registry resolves language keys and scenario names.
type Registry struct {
	scenarios map[string]entities.Scenario
}

// Load reads the scenario file and returns a ready registry.
func Load(promptsPath string) (*Registry, error) {
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenarios map[string]entities.Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s defines no scenarios", promptsPath)
	}

	for name, sc := range scenarios {
		if sc.Role == "" {
			return nil, fmt.Errorf("scenario %q has no role text", name)
		}
	}

	return &Registry{scenarios: scenarios}, nil
}

// ResolveLanguage looks up a language key.
func (r *Registry) ResolveLanguage(key string) (Language, error) {
	lang, ok := languages[key]
	if !ok {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, key)
	}
	return lang, nil
}

// LanguageOrDefault resolves a key, clamping unknown or empty keys to the
// default language.
func (r *Registry) LanguageOrDefault(key string) Language {
	if lang, ok := languages[key]; ok {
		return lang
	}
	return languages[DefaultLanguage]
}

// Languages returns all registered languages sorted by key.
func (r *Registry) Languages() []Language {
	out := make([]Language, 0, len(languages))
	for _, lang := range languages {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ResolveScenario looks up a scenario by name.
func (r *Registry) ResolveScenario(name string) (entities.Scenario, error) {
	sc, ok := r.scenarios[name]
	if !ok {
		return entities.Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return sc, nil
}

// ScenarioNames returns the available scenario names sorted alphabetically.
func (r *Registry) ScenarioNames() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LevelPrompt returns the teacher preamble for a proficiency level, or the
// empty string when no level was chosen.
func (r *Registry) LevelPrompt(level string) string {
	switch level {
	case LevelBeginner:
		return beginnerPrompt
	case LevelAdvanced:
		return advancedPrompt
	default:
		return ""
	}
}

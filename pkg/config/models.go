package config

import "strings"

// DefaultModelName is the model used when none is configured
const DefaultModelName = "gpt-4o-mini"

// KnownModels lists the recognized model names.
var KnownModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4.1-nano",
	"gpt-3.5-turbo",
}

var modelAliases = map[string]string{
	"gpt4":         "gpt-4o",
	"gpt-4":        "gpt-4o",
	"gpt4o":        "gpt-4o",
	"gpt4o-mini":   "gpt-4o-mini",
	"gpt4-mini":    "gpt-4o-mini",
	"gpt35":        "gpt-3.5-turbo",
	"gpt-35-turbo": "gpt-3.5-turbo",
	"gpt3.5":       "gpt-3.5-turbo",
	"gpt-4.1mini":  "gpt-4.1-mini",
	"gpt41":        "gpt-4.1",
	"gpt41-mini":   "gpt-4.1-mini",
	"gpt41-nano":   "gpt-4.1-nano",
}

// ParseModel resolves a configured model name. Aliases map onto a known
// model; unrecognized names pass through unchanged so OpenAI-compatible
// backends can serve their own models. Empty input yields DefaultModelName.
func ParseModel(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return DefaultModelName
	}
	if alias, ok := modelAliases[n]; ok {
		return alias
	}
	for _, m := range KnownModels {
		if m == n {
			return m
		}
	}
	return strings.TrimSpace(name)
}

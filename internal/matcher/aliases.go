package matcher

import (
	"encoding/json"
	"fmt"
	"os"
)

// defaultAliases maps well-known shorthand names onto the canonical form
// providers tend to use. Keys are lowercased raw names; the lookup happens
// before normalization so the canonical form goes through suffix stripping
// like any other name.
var defaultAliases = map[string]string{
	"man utd":         "manchester united",
	"man united":      "manchester united",
	"man city":        "manchester city",
	"spurs":           "tottenham hotspur",
	"wolves":          "wolverhampton wanderers",
	"brighton":        "brighton and hove albion",
	"sheff utd":       "sheffield united",
	"sheff wed":       "sheffield wednesday",
	"nottm forest":    "nottingham forest",
	"west brom":       "west bromwich albion",
	"psg":             "paris saint germain",
	"inter":           "internazionale",
	"atletico":        "atletico madrid",
	"real":            "real madrid",
	"bayern":          "bayern munich",
	"dortmund":        "borussia dortmund",
	"gladbach":        "borussia monchengladbach",
	"leverkusen":      "bayer leverkusen",
	"fc koln":         "koln",
	"newcastle utd":   "newcastle",
	"leeds utd":       "leeds united",
}

// DefaultAliases returns a copy of the built-in alias table
func DefaultAliases() map[string]string {
	aliases := make(map[string]string, len(defaultAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	return aliases
}

// LoadAliases reads a JSON alias file ({"short name": "canonical name"})
// and merges it over the built-in table. File entries win on conflict.
func LoadAliases(path string) (map[string]string, error) {
	aliases := DefaultAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file %s: %w", path, err)
	}

	var fromFile map[string]string
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse alias file %s: %w", path, err)
	}

	for k, v := range fromFile {
		aliases[k] = v
	}
	return aliases, nil
}

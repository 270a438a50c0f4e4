// Package matcher reconciles event and team identities across data
// providers that use inconsistent naming.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// orgSuffixes are organizational name parts carrying no identity signal.
// Stripped as whole words after punctuation removal.
var orgSuffixes = map[string]bool{
	"fc":        true,
	"afc":       true,
	"cf":        true,
	"sc":        true,
	"united":    true,
	"city":      true,
	"town":      true,
	"county":    true,
	"athletic":  true,
	"rovers":    true,
	"wanderers": true,
	"albion":    true,
	"hotspur":   true,
}

// normalizeName lowercases, strips diacritics and punctuation, removes
// organizational suffixes and collapses whitespace. An alias-table hit on
// the raw name is a deterministic override applied before anything else.
func normalizeName(name string, aliases map[string]string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}

	key = stripDiacritics(key)
	key = stripPunctuation(key)

	words := strings.Fields(key)
	kept := words[:0]
	for _, w := range words {
		if orgSuffixes[w] {
			continue
		}
		kept = append(kept, w)
	}
	// A name made up entirely of suffix words keeps its original words,
	// otherwise "Leeds United" vs "United" would both normalize to nothing.
	if len(kept) == 0 {
		kept = words
	}

	return strings.Join(kept, " ")
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// similarity scores two normalized strings in [0, 1]: exact equality 1.0,
// containment 0.9, otherwise edit distance scaled by length.
func similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance with a two-row matrix
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

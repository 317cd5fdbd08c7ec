package importer

import "strings"

// canonicalMediaTypes is the recognized OOH media-type vocabulary. Tags
// outside this list are kept, capitalized, so new formats do not get lost
// on import.
var canonicalMediaTypes = []string{
	"Outdoor",
	"Frontlight",
	"Backlight",
	"Painel rodoviário",
	"Led",
	"Iluminado",
	"Digital",
	"Relógio de rua",
	"Empena",
	"Totem",
	"Busdoor",
	"Taxidoor",
}

// tagSynonyms resolves the frequent misspellings and spacing variants seen
// in exhibitor sheets before any fuzzy matching runs.
var tagSynonyms = map[string]string{
	"front light":         "Frontlight",
	"front-light":         "Frontlight",
	"frontligth":          "Frontlight",
	"frontlite":           "Frontlight",
	"back light":          "Backlight",
	"back-light":          "Backlight",
	"backligth":           "Backlight",
	"backlite":            "Backlight",
	"painel de rodovia":   "Painel rodoviário",
	"painel rodovia":      "Painel rodoviário",
	"painel rodoviario":   "Painel rodoviário",
	"painel de estrada":   "Painel rodoviário",
	"painel estrada":      "Painel rodoviário",
	"relogio de rua":      "Relógio de rua",
	"relogio":             "Relógio de rua",
	"bus door":            "Busdoor",
	"bus-door":            "Busdoor",
	"taxi door":           "Taxidoor",
	"taxi-door":           "Taxidoor",
}

// fuzzyTagThreshold is the minimum similarity for a fuzzy match against the
// canonical vocabulary; below it the tag is assumed to be a legitimate new
// type rather than a typo.
const fuzzyTagThreshold = 0.6

func canonicalTag(tag string) string {
	folded := foldAccents(strings.ToLower(tag))
	if canonical, ok := tagSynonyms[folded]; ok {
		return canonical
	}

	best, score := bestTagMatch(folded)
	if score > fuzzyTagThreshold {
		return best
	}
	return capitalize(tag)
}

func bestTagMatch(folded string) (string, float64) {
	best := canonicalMediaTypes[0]
	bestScore := 0.0
	for _, candidate := range canonicalMediaTypes {
		candidateFolded := foldAccents(strings.ToLower(candidate))
		distance := levenshtein(folded, candidateFolded)
		maxLen := len(folded)
		if len(candidateFolded) > maxLen {
			maxLen = len(candidateFolded)
		}
		if maxLen == 0 {
			continue
		}
		score := 1 - float64(distance)/float64(maxLen)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best, bestScore
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j-1]+cost, curr[j-1]+1, prev[j]+1)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
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

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

package upload

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// Suggestion is one tournament a filename plausibly belongs to.
type Suggestion struct {
	Tournament statsapi.Tournament
	Confidence float64
	Reasons    []string
}

// Detect ranks tournaments by how strongly the filename points at them.
// An embedded tournament code ("mfl_round4.xlsx") is a certain match;
// otherwise name tokens are compared by edit distance. Results below a
// minimum similarity are dropped.
func Detect(filename string, tournaments []statsapi.Tournament) []Suggestion {
	name := normalizeFilename(filename)
	if name == "" {
		return nil
	}
	compact := strings.ReplaceAll(name, " ", "")

	var suggestions []Suggestion
	for _, t := range tournaments {
		score, reasons := scoreTournament(name, compact, t)
		if score > 0.3 {
			suggestions = append(suggestions, Suggestion{
				Tournament: t,
				Confidence: score,
				Reasons:    reasons,
			})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// KindFromFilename guesses the stat slice a spreadsheet holds. Files named
// for 90-minute averages are per-90 slices; everything else is totals.
func KindFromFilename(filename string) statsapi.SliceKind {
	lower := strings.ToLower(filename)
	if strings.Contains(lower, "per90") || strings.Contains(lower, "90") {
		return statsapi.SlicePer90
	}
	return statsapi.SliceTotal
}

func scoreTournament(name, compact string, t statsapi.Tournament) (float64, []string) {
	code := normalizeFilename(t.Code)
	codeCompact := strings.ReplaceAll(code, " ", "")
	if codeCompact != "" && strings.Contains(compact, codeCompact) {
		return 1.0, []string{"Tournament code in filename"}
	}

	var scores []float64
	var reasons []string

	tournamentName := normalizeFilename(t.Name)
	if tournamentName != "" {
		s := tokenSimilarity(name, tournamentName)
		scores = append(scores, s)
		if s > 0.5 {
			reasons = append(reasons, "Matching name components")
		}
	}

	fullName := normalizeFilename(t.FullName)
	if fullName != "" {
		s := tokenSimilarity(name, fullName)
		scores = append(scores, s)
		if s > 0.5 {
			reasons = append(reasons, "Similar to full tournament name")
		}
	}

	if len(scores) == 0 {
		return 0, nil
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	score := total / float64(len(scores))
	if score > 0.3 && len(reasons) == 0 {
		reasons = append(reasons, "Partial name similarity")
	}
	return score, reasons
}

// normalizeFilename lowercases, drops the extension and keeps only letters,
// digits and spaces. Digits stay because codes like yfl1 carry them.
func normalizeFilename(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(strings.TrimSpace(name))

	var result strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
		default:
			result.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

// tokenSimilarity scores how many tokens of one string have a close match
// in the other.
func tokenSimilarity(s1, s2 string) float64 {
	tokens1 := strings.Fields(s1)
	tokens2 := strings.Fields(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	var matchCount int
	for _, token1 := range tokens1 {
		for _, token2 := range tokens2 {
			if stringSimilarity(token1, token2) > 0.8 {
				matchCount++
				break
			}
		}
	}

	maxTokens := len(tokens1)
	if len(tokens2) > maxTokens {
		maxTokens = len(tokens2)
	}
	return float64(matchCount) / float64(maxTokens)
}

// stringSimilarity converts edit distance into a 0..1 score.
func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = minOf(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func minOf(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

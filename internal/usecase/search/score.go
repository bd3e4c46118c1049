package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
)

// Default ranking constants. They were tuned empirically; treat changes as product decisions.
const (
	DefaultMinScore    = 0.1
	DefaultFuzzyBudget = 2
	DefaultTieEpsilon  = 0.01
)

// Tier ceilings. An exact hit in a field always beats a fuzzy hit in the same field.
const (
	exactScore       = 1.0
	substringCeiling = 0.8
	fuzzyCeiling     = 0.6
	wordCeiling      = 0.4

	wordSubstringScore = 0.7
	wordFuzzyScore     = 0.5
	wordFuzzyMinLen    = 3
	wordFuzzyBudget    = 1
)

// Weights are per-field multipliers applied to raw field scores.
type Weights struct {
	Name        float64
	Category    float64
	Brand       float64
	Description float64
}

// DefaultWeights returns name 4.0, category 2.5, brand 2.5, description 1.0.
func DefaultWeights() Weights {
	return Weights{Name: 4.0, Category: 2.5, Brand: 2.5, Description: 1.0}
}

// Tuning holds the ranking constants of an Engine.
type Tuning struct {
	Weights Weights
	// MinScore is the inclusion threshold for aggregate scores.
	MinScore float64
	// FuzzyBudget is the maximum whole-string edit distance accepted as a typo.
	FuzzyBudget int
	// TieEpsilon is the score difference below which two results count as tied.
	TieEpsilon float64
	// Locale drives the alphabetical tie-break.
	Locale language.Tag
}

// DefaultTuning returns the production ranking constants.
func DefaultTuning() Tuning {
	return Tuning{
		Weights:     DefaultWeights(),
		MinScore:    DefaultMinScore,
		FuzzyBudget: DefaultFuzzyBudget,
		TieEpsilon:  DefaultTieEpsilon,
		Locale:      language.English,
	}
}

// FieldScore scores how well query matches one field text, in [0, 1].
// Matching is case-insensitive and ignores surrounding whitespace.
// Tiers are exclusive and checked in order: exact, substring, fuzzy, word-level.
func FieldScore(query, text string) float64 {
	return fieldScore(normalize(query), normalize(text), DefaultFuzzyBudget)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// fieldScore expects normalized inputs.
func fieldScore(q, t string, budget int) float64 {
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return exactScore
	}

	ql := utf8.RuneCountInString(q)
	tl := utf8.RuneCountInString(t)

	if strings.Contains(t, q) {
		return substringCeiling * float64(ql) / float64(tl)
	}

	// Length difference is a lower bound on the distance.
	if abs(ql-tl) <= budget {
		if d := Distance(q, t); d <= budget {
			maxLen := max(ql, tl)
			return math.Max(0, float64(maxLen-d)/float64(maxLen)) * fuzzyCeiling
		}
	}

	return wordScore(q, t)
}

// wordScore averages the best per-word match over all query words.
// Unmatched words contribute zero and dilute the average.
func wordScore(q, t string) float64 {
	qWords := strings.Fields(q)
	tWords := strings.Fields(t)
	if len(qWords) == 0 || len(tWords) == 0 {
		return 0
	}

	var total float64
	matched := 0
	for _, qw := range qWords {
		best := 0.0
		for _, tw := range tWords {
			best = math.Max(best, wordPairScore(qw, tw))
			if best == wordSubstringScore {
				break
			}
		}
		if best > 0 {
			matched++
			total += best
		}
	}
	if matched == 0 {
		return 0
	}
	return total / float64(len(qWords)) * wordCeiling
}

func wordPairScore(qw, tw string) float64 {
	if strings.Contains(tw, qw) || strings.Contains(qw, tw) {
		return wordSubstringScore
	}
	ql := utf8.RuneCountInString(qw)
	tl := utf8.RuneCountInString(tw)
	if ql < wordFuzzyMinLen || tl < wordFuzzyMinLen || abs(ql-tl) > wordFuzzyBudget {
		return 0
	}
	if Distance(qw, tw) <= wordFuzzyBudget {
		return wordFuzzyScore
	}
	return 0
}

// aggregate scores an item against a normalized query.
// Fields are evaluated as name, category, brand, description; a field is
// reported as matched when its raw score is positive.
func (e *Engine) aggregate(item *catalog.Item, q string) (float64, []string) {
	w := e.tuning.Weights
	budget := e.tuning.FuzzyBudget

	var (
		total  float64
		fields []string
	)
	add := func(field, text string, weight float64) {
		s := fieldScore(q, normalize(text), budget)
		if s <= 0 {
			return
		}
		total += s * weight
		fields = append(fields, field)
	}

	add(result.FieldName, item.Name, w.Name)
	if item.Category != nil {
		add(result.FieldCategory, item.Category.Name, w.Category)
	}
	if item.Brand != nil {
		add(result.FieldBrand, item.Brand.Name, w.Brand)
	}
	if item.Description != "" {
		add(result.FieldDescription, item.Description, w.Description)
	}
	return total, fields
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

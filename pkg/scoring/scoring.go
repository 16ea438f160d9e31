// Package scoring computes questionnaire totals and severity labels for the
// self-assessment tests offered by the application.
package scoring

import (
	"errors"
	"fmt"
)

// TestType identifies a questionnaire.
type TestType string

const (
	TestGAD7       TestType = "gad7"
	TestPHQ9       TestType = "phq9"
	TestPSS        TestType = "pss"
	TestWellness   TestType = "wellness"
	TestSelfEsteem TestType = "selfesteem"
)

var ErrUnknownTest = errors.New("unknown test type")

// bucket maps an inclusive score range to a severity label.
type bucket struct {
	min, max int
	label    string
}

// definition describes one questionnaire: number of questions, the maximum
// value of a single answer, severity buckets over the total, and score
// direction (anxiety/depression/stress tests improve downwards).
type definition struct {
	questions     int
	answerMax     int
	buckets       []bucket
	lowerIsBetter bool
}

// Severity labels are product copy and stay in Spanish.
var definitions = map[TestType]definition{
	TestGAD7: {
		questions: 7,
		answerMax: 3,
		buckets: []bucket{
			{0, 4, "Mínima"},
			{5, 9, "Leve"},
			{10, 14, "Moderada"},
			{15, 21, "Severa"},
		},
		lowerIsBetter: true,
	},
	TestPHQ9: {
		questions: 9,
		answerMax: 3,
		buckets: []bucket{
			{0, 4, "Mínima"},
			{5, 9, "Leve"},
			{10, 14, "Moderada"},
			{15, 19, "Moderadamente severa"},
			{20, 27, "Severa"},
		},
		lowerIsBetter: true,
	},
	TestPSS: {
		questions: 10,
		answerMax: 4,
		buckets: []bucket{
			{0, 13, "Mínima"},
			{14, 26, "Moderada"},
			{27, 40, "Severa"},
		},
		lowerIsBetter: true,
	},
	TestWellness: {
		questions: 10,
		answerMax: 5,
		buckets: []bucket{
			{0, 20, "Baja"},
			{21, 35, "Media"},
			{36, 50, "Alta"},
		},
		lowerIsBetter: false,
	},
	TestSelfEsteem: {
		questions: 10,
		answerMax: 3,
		buckets: []bucket{
			{0, 14, "Baja"},
			{15, 25, "Media"},
			{26, 30, "Alta"},
		},
		lowerIsBetter: false,
	},
}

// Result is the derived outcome of a completed questionnaire.
type Result struct {
	Total    int
	Severity string
}

// Valid reports whether t names a known questionnaire.
func Valid(t TestType) bool {
	_, ok := definitions[t]
	return ok
}

// Questions returns the expected number of answers for t.
func Questions(t TestType) (int, error) {
	def, ok := definitions[t]
	if !ok {
		return 0, ErrUnknownTest
	}
	return def.questions, nil
}

// LowerIsBetter reports the improvement direction for t.
func LowerIsBetter(t TestType) bool {
	return definitions[t].lowerIsBetter
}

// Score sums the ordered answers and buckets the total into a severity label.
// Answers must match the questionnaire length and each answer must lie in
// [0, answerMax].
func Score(t TestType, answers []int) (Result, error) {
	def, ok := definitions[t]
	if !ok {
		return Result{}, ErrUnknownTest
	}
	if len(answers) != def.questions {
		return Result{}, fmt.Errorf("expected %d answers, got %d", def.questions, len(answers))
	}
	total := 0
	for i, a := range answers {
		if a < 0 || a > def.answerMax {
			return Result{}, fmt.Errorf("answer %d out of range [0,%d]", i, def.answerMax)
		}
		total += a
	}
	return Result{Total: total, Severity: severityFor(def, total)}, nil
}

// IsImprovement compares two totals of the same test type: for tests where
// lower is better the latest score must be strictly lower than the previous
// one, otherwise strictly higher.
func IsImprovement(t TestType, latest, previous int) bool {
	if definitions[t].lowerIsBetter {
		return latest < previous
	}
	return latest > previous
}

func severityFor(def definition, total int) string {
	for _, b := range def.buckets {
		if total >= b.min && total <= b.max {
			return b.label
		}
	}
	// Totals above the last bucket's max cannot occur for validated answers,
	// but clamp to the top label for safety.
	return def.buckets[len(def.buckets)-1].label
}

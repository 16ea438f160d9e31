package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreGAD7(t *testing.T) {
	tests := []struct {
		name     string
		answers  []int
		total    int
		severity string
	}{
		{"moderate", []int{2, 1, 3, 0, 2, 1, 1}, 10, "Moderada"},
		{"all zeros", []int{0, 0, 0, 0, 0, 0, 0}, 0, "Mínima"},
		{"all max", []int{3, 3, 3, 3, 3, 3, 3}, 21, "Severa"},
		{"mild lower bound", []int{1, 1, 1, 1, 1, 0, 0}, 5, "Leve"},
		{"mild upper bound", []int{2, 2, 2, 2, 1, 0, 0}, 9, "Leve"},
		{"severe lower bound", []int{3, 3, 3, 3, 3, 0, 0}, 15, "Severa"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Score(TestGAD7, tc.answers)
			require.NoError(t, err)
			assert.Equal(t, tc.total, res.Total)
			assert.Equal(t, tc.severity, res.Severity)
		})
	}
}

func TestScorePHQ9(t *testing.T) {
	res, err := Score(TestPHQ9, []int{2, 2, 2, 2, 2, 2, 2, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 18, res.Total)
	assert.Equal(t, "Moderadamente severa", res.Severity)
}

func TestScoreRejectsWrongAnswerCount(t *testing.T) {
	_, err := Score(TestGAD7, []int{1, 2, 3})
	assert.Error(t, err)
}

func TestScoreRejectsOutOfRangeAnswer(t *testing.T) {
	_, err := Score(TestGAD7, []int{0, 0, 0, 0, 0, 0, 4})
	assert.Error(t, err)

	_, err = Score(TestGAD7, []int{0, 0, 0, 0, 0, 0, -1})
	assert.Error(t, err)
}

func TestScoreRejectsUnknownTest(t *testing.T) {
	_, err := Score(TestType("mbti"), []int{1})
	assert.ErrorIs(t, err, ErrUnknownTest)
}

func TestIsImprovement(t *testing.T) {
	// Anxiety-type tests improve downwards.
	assert.True(t, IsImprovement(TestGAD7, 5, 12))
	assert.False(t, IsImprovement(TestGAD7, 12, 5))
	assert.False(t, IsImprovement(TestGAD7, 8, 8))

	// Wellness improves upwards.
	assert.True(t, IsImprovement(TestWellness, 40, 30))
	assert.False(t, IsImprovement(TestWellness, 30, 40))
}

func TestValid(t *testing.T) {
	for _, tt := range []TestType{TestGAD7, TestPHQ9, TestPSS, TestWellness, TestSelfEsteem} {
		assert.True(t, Valid(tt), string(tt))
	}
	assert.False(t, Valid(TestType("unknown")))
}

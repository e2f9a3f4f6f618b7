package scoring

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarfiscal/radar/internal/catalog"
)

func twoQuestionEngine() *Engine {
	c := catalog.New([]catalog.Question{
		{ID: "Q1", Text: "First", Options: []catalog.Option{{Label: "no", Weight: 0}, {Label: "yes", Weight: 10}}},
		{ID: "Q2", Text: "Second", Options: []catalog.Option{{Label: "no", Weight: 0}, {Label: "yes", Weight: 10}}},
	})
	return New(c, catalog.DefaultRules())
}

func TestScoreHalfIsMedium(t *testing.T) {
	e := twoQuestionEngine()

	res := e.Score(catalog.Answers{
		"Q1": {Label: "yes", Weight: 10},
		"Q2": {Label: "no", Weight: 0},
	})

	assert.Equal(t, 10, res.RawScore)
	assert.Equal(t, 20, res.MaxScorePath)
	assert.Equal(t, 50, res.ScoreFinal)
	assert.Equal(t, Medium, res.Classification)
	require.Len(t, res.Factors, 1)
	assert.Equal(t, Moderate, res.Factors[0].Impact)
}

func TestUnansweredVisibleQuestionsCountInDenominator(t *testing.T) {
	e := twoQuestionEngine()

	res := e.Score(catalog.Answers{"Q1": {Label: "yes", Weight: 10}})

	assert.Equal(t, 20, res.MaxScorePath)
	assert.Equal(t, 50, res.ScoreFinal)
}

func TestScoreEmptyCatalogIsZero(t *testing.T) {
	e := New(catalog.New(nil), catalog.DefaultRules())
	res := e.Score(catalog.Answers{"x": {Label: "a", Weight: 50}})

	assert.Equal(t, 0, res.ScoreFinal)
	assert.Equal(t, Low, res.Classification)
}

func TestClassifyBoundaries(t *testing.T) {
	e := twoQuestionEngine()

	tests := []struct {
		score int
		want  Classification
	}{
		{0, Low},
		{30, Low},
		{31, Medium},
		{70, Medium},
		{71, High},
		{100, High},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Classify(tt.score), "score %d", tt.score)
	}
}

func TestFactorImpactLevels(t *testing.T) {
	c := catalog.New([]catalog.Question{
		{ID: "crit", Text: "Critical one", Options: []catalog.Option{{Label: "a", Weight: 20}}},
		{ID: "mod", Text: "Moderate one", Options: []catalog.Option{{Label: "b", Weight: 10}}},
		{ID: "low", Text: "Low one", Options: []catalog.Option{{Label: "c", Weight: 5}}},
	})
	e := New(c, catalog.DefaultRules())

	res := e.Score(catalog.Answers{
		"low":  {Label: "c", Weight: 5},
		"mod":  {Label: "b", Weight: 10},
		"crit": {Label: "a", Weight: 20},
	})

	require.Len(t, res.Factors, 2)
	assert.Equal(t, Factor{QuestionID: "crit", QuestionText: "Critical one", AnswerLabel: "a", Impact: Critical, Weight: 20}, res.Factors[0])
	assert.Equal(t, Factor{QuestionID: "mod", QuestionText: "Moderate one", AnswerLabel: "b", Impact: Moderate, Weight: 10}, res.Factors[1])
}

func TestFactorUnknownQuestionFallsBackToID(t *testing.T) {
	e := twoQuestionEngine()

	res := e.Score(catalog.Answers{
		"zz-legacy": {Label: "old", Weight: 30},
		"Q2":        {Label: "yes", Weight: 10},
		"aa-legacy": {Label: "old", Weight: 12},
	})

	require.Len(t, res.Factors, 3)
	assert.Equal(t, "Q2", res.Factors[0].QuestionID)
	assert.Equal(t, "aa-legacy", res.Factors[1].QuestionText)
	assert.Equal(t, "zz-legacy", res.Factors[2].QuestionText)
	assert.Equal(t, Critical, res.Factors[2].Impact)
}

// Answers on questions that became hidden drop out of the score but remain
// in the factor list.
func TestHiddenAnswerStillReportedAsFactor(t *testing.T) {
	c := catalog.New([]catalog.Question{
		{ID: "gate", Text: "Gate", Options: []catalog.Option{{Label: "open", Weight: 0}, {Label: "closed", Weight: 0}}},
		{ID: "inner", Text: "Inner", Options: []catalog.Option{{Label: "bad", Weight: 25}, {Label: "good", Weight: 0}},
			ShowIf: []catalog.Condition{{DependsOn: "gate", Value: "open"}}},
		{ID: "outer", Text: "Outer", Options: []catalog.Option{{Label: "bad", Weight: 10}, {Label: "good", Weight: 0}}},
	})
	e := New(c, catalog.DefaultRules())

	open := e.Score(catalog.Answers{
		"gate":  {Label: "open", Weight: 0},
		"inner": {Label: "bad", Weight: 25},
		"outer": {Label: "good", Weight: 0},
	})
	assert.Equal(t, 25, open.RawScore)
	assert.Equal(t, 35, open.MaxScorePath)

	closed := e.Score(catalog.Answers{
		"gate":  {Label: "closed", Weight: 0},
		"inner": {Label: "bad", Weight: 25},
		"outer": {Label: "good", Weight: 0},
	})
	assert.Equal(t, 0, closed.RawScore)
	assert.Equal(t, 10, closed.MaxScorePath)
	assert.Equal(t, 0, closed.ScoreFinal)
	require.Len(t, closed.Factors, 1)
	assert.Equal(t, "inner", closed.Factors[0].QuestionID)
	assert.Equal(t, Critical, closed.Factors[0].Impact)
}

func TestScoreRangeAndDeterminism(t *testing.T) {
	c := catalog.Default()
	e := New(c, catalog.DefaultRules())
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		answers := catalog.Answers{}
		for _, q := range c.Questions() {
			if rng.IntN(4) == 0 {
				continue
			}
			o := q.Options[rng.IntN(len(q.Options))]
			answers[q.ID] = catalog.Answer{Label: o.Label, Weight: o.Weight}
		}
		if rng.IntN(10) == 0 {
			answers["rogue"] = catalog.Answer{Label: "x", Weight: rng.IntN(200) - 100}
		}

		first := e.Score(answers)
		second := e.Score(answers)

		require.GreaterOrEqual(t, first.ScoreFinal, 0)
		require.LessOrEqual(t, first.ScoreFinal, 100)
		require.Equal(t, first, second)
	}
}

func TestScoreClampsInconsistentWeights(t *testing.T) {
	e := twoQuestionEngine()

	over := e.Score(catalog.Answers{"Q1": {Label: "yes", Weight: 500}})
	assert.Equal(t, 100, over.ScoreFinal)

	under := e.Score(catalog.Answers{"Q1": {Label: "yes", Weight: -500}})
	assert.Equal(t, 0, under.ScoreFinal)
}

func TestScoreRoundsToNearest(t *testing.T) {
	c := catalog.New([]catalog.Question{
		{ID: "a", Options: []catalog.Option{{Label: "x", Weight: 3}}},
	})
	e := New(c, catalog.DefaultRules())

	// 1/3 -> 33.33 -> 33, 2/3 -> 66.67 -> 67
	assert.Equal(t, 33, e.Score(catalog.Answers{"a": {Weight: 1}}).ScoreFinal)
	assert.Equal(t, 67, e.Score(catalog.Answers{"a": {Weight: 2}}).ScoreFinal)
}

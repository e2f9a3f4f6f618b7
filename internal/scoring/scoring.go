// Package scoring turns the recorded answers of a session into a normalized
// risk score, a classification tier and a list of risk factors. It is pure:
// the same catalog, rules and answers always produce the same Result.
package scoring

import (
	"math"
	"sort"

	"github.com/radarfiscal/radar/internal/catalog"
)

type Classification string

const (
	Low    Classification = "LOW"
	Medium Classification = "MEDIUM"
	High   Classification = "HIGH"
)

type Impact string

const (
	Critical Impact = "Crítico"
	Moderate Impact = "Moderado"
)

// Factor is a recorded answer heavy enough to be reported.
type Factor struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	AnswerLabel  string `json:"answerLabel"`
	Impact       Impact `json:"impact"`
	Weight       int    `json:"-"`
}

type Result struct {
	RawScore       int
	MaxScorePath   int
	ScoreFinal     int
	Classification Classification
	Factors        []Factor
}

// Engine scores answers against an immutable catalog and rule set.
type Engine struct {
	catalog *catalog.Catalog
	rules   catalog.Rules
}

func New(c *catalog.Catalog, rules catalog.Rules) *Engine {
	return &Engine{catalog: c, rules: rules}
}

func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

func (e *Engine) Rules() catalog.Rules { return e.rules }

// Score computes the full result for answers.
//
// The score only counts questions visible for the persisted answer set,
// while factors are drawn from every recorded answer. An answer left behind
// on a question that became hidden therefore still shows up as a factor.
func (e *Engine) Score(answers catalog.Answers) Result {
	raw, maxPath := e.pathScore(answers)
	final := normalize(raw, maxPath)
	return Result{
		RawScore:       raw,
		MaxScorePath:   maxPath,
		ScoreFinal:     final,
		Classification: e.Classify(final),
		Factors:        e.riskFactors(answers),
	}
}

// pathScore sums the recorded weights and the best attainable weights over
// the questions visible for answers. Unanswered visible questions still add
// their best weight to the denominator.
func (e *Engine) pathScore(answers catalog.Answers) (raw, maxPath int) {
	for _, q := range e.catalog.Visible(answers) {
		if a, ok := answers[q.ID]; ok {
			raw += a.Weight
		}
		maxPath += q.MaxWeight()
	}
	return raw, maxPath
}

// riskFactors lists every recorded answer at or above the moderate impact
// level, regardless of current visibility. Known questions come first in
// catalog order, then unknown ids sorted lexically.
func (e *Engine) riskFactors(answers catalog.Answers) []Factor {
	factors := make([]Factor, 0)
	for id, a := range answers {
		if a.Weight < e.rules.ImpactLevels.Moderate {
			continue
		}
		text := id
		if q, ok := e.catalog.Question(id); ok {
			text = q.Text
		}
		impact := Moderate
		if a.Weight >= e.rules.ImpactLevels.Critical {
			impact = Critical
		}
		factors = append(factors, Factor{
			QuestionID:   id,
			QuestionText: text,
			AnswerLabel:  a.Label,
			Impact:       impact,
			Weight:       a.Weight,
		})
	}

	sort.Slice(factors, func(i, j int) bool {
		pi, iKnown := e.catalog.Position(factors[i].QuestionID)
		pj, jKnown := e.catalog.Position(factors[j].QuestionID)
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown != jKnown:
			return iKnown
		default:
			return factors[i].QuestionID < factors[j].QuestionID
		}
	})
	return factors
}

// Classify maps a normalized score to a tier. Comparisons are strict, so a
// score equal to a threshold stays in the lower tier.
func (e *Engine) Classify(score int) Classification {
	switch {
	case score > e.rules.Thresholds.Medium:
		return High
	case score > e.rules.Thresholds.Low:
		return Medium
	default:
		return Low
	}
}

func normalize(raw, maxPath int) int {
	if maxPath <= 0 {
		return 0
	}
	v := int(math.Round(float64(raw) / float64(maxPath) * 100))
	return min(100, max(0, v))
}

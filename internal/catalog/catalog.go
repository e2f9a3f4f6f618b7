// Package catalog holds the questionnaire master data and the visibility
// evaluator shared by the server and the terminal client. It has no
// dependencies on storage or transport.
package catalog

import (
	"errors"
	"fmt"
)

// Mode combines the conditions of a question's visibility rule.
type Mode string

const (
	ModeAny Mode = "ANY"
	ModeAll Mode = "ALL"
)

type Option struct {
	Label  string `json:"label" yaml:"label"`
	Weight int    `json:"weight" yaml:"weight"`
}

// Condition holds when the answer recorded for DependsOn has label Value.
type Condition struct {
	DependsOn string `json:"dependsOn" yaml:"dependsOn"`
	Value     string `json:"value" yaml:"value"`
}

type Question struct {
	ID         string      `json:"id" yaml:"id"`
	Text       string      `json:"text" yaml:"text"`
	Category   string      `json:"category" yaml:"category"`
	Options    []Option    `json:"options" yaml:"options"`
	ShowIf     []Condition `json:"show_if,omitempty" yaml:"show_if,omitempty"`
	ShowIfMode Mode        `json:"show_if_mode,omitempty" yaml:"show_if_mode,omitempty"`
}

// MaxWeight returns the highest option weight, or 0 for a question without
// options.
func (q Question) MaxWeight() int {
	if len(q.Options) == 0 {
		return 0
	}
	best := q.Options[0].Weight
	for _, o := range q.Options[1:] {
		if o.Weight > best {
			best = o.Weight
		}
	}
	return best
}

// Option returns the option with the given label.
func (q Question) Option(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// VisibleGiven reports whether q is shown for the recorded answers.
func (q Question) VisibleGiven(answers Answers) bool {
	if len(q.ShowIf) == 0 {
		return true
	}
	holds := func(c Condition) bool {
		a, ok := answers[c.DependsOn]
		return ok && a.Label == c.Value
	}
	if q.ShowIfMode == ModeAll {
		for _, c := range q.ShowIf {
			if !holds(c) {
				return false
			}
		}
		return true
	}
	for _, c := range q.ShowIf {
		if holds(c) {
			return true
		}
	}
	return false
}

// Answer is the label and weight recorded for one question.
type Answer struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Answers maps question id to the recorded answer.
type Answers map[string]Answer

// Catalog is the ordered questionnaire. It is never mutated after loading.
type Catalog struct {
	questions []Question
	index     map[string]int
}

// New builds a catalog preserving the order of qs.
func New(qs []Question) *Catalog {
	c := &Catalog{
		questions: append([]Question(nil), qs...),
		index:     make(map[string]int, len(qs)),
	}
	for i, q := range c.questions {
		if _, dup := c.index[q.ID]; !dup {
			c.index[q.ID] = i
		}
	}
	return c
}

// Questions returns a copy of the full ordered question list.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

func (c *Catalog) Len() int { return len(c.questions) }

// Question looks a question up by id.
func (c *Catalog) Question(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Position returns the catalog order of a question id.
func (c *Catalog) Position(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Visible returns, in catalog order, the questions shown for answers.
// It is evaluated from scratch on every call.
func (c *Catalog) Visible(answers Answers) []Question {
	visible := make([]Question, 0, len(c.questions))
	for _, q := range c.questions {
		if q.VisibleGiven(answers) {
			visible = append(visible, q)
		}
	}
	return visible
}

// Validate checks the structural rules the evaluator relies on.
func (c *Catalog) Validate() error {
	if len(c.questions) == 0 {
		return errors.New("catalog has no questions")
	}
	seen := make(map[string]bool, len(c.questions))
	var errs []error
	for i, q := range c.questions {
		if q.ID == "" {
			errs = append(errs, fmt.Errorf("question %d: empty id", i))
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("question %q: duplicate id", q.ID))
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			errs = append(errs, fmt.Errorf("question %q: no options", q.ID))
		}
		labels := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if labels[o.Label] {
				errs = append(errs, fmt.Errorf("question %q: duplicate option %q", q.ID, o.Label))
			}
			labels[o.Label] = true
		}
		switch q.ShowIfMode {
		case "", ModeAny, ModeAll:
		default:
			errs = append(errs, fmt.Errorf("question %q: unknown show_if_mode %q", q.ID, q.ShowIfMode))
		}
	}
	for _, q := range c.questions {
		for _, cond := range q.ShowIf {
			if _, ok := c.index[cond.DependsOn]; !ok {
				errs = append(errs, fmt.Errorf("question %q: condition depends on unknown question %q", q.ID, cond.DependsOn))
			}
		}
	}
	return errors.Join(errs...)
}

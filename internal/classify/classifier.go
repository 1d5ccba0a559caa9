// Package classify guesses which certificate a text was taken from, so
// callers can extract without naming the document kind up front.
package classify

import (
	"context"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
)

// DefaultMinConfidence is the share of the total evidence the winning kind
// must hold
const DefaultMinConfidence = 0.5

// ErrUnclassified is returned when the text carries no usable evidence or the
// evidence is split between kinds
var ErrUnclassified = errors.New("document kind could not be determined")

// Reason records one rule hit
type Reason struct {
	Rule     string  `json:"rule"`
	Evidence string  `json:"evidence"`
	Weight   float64 `json:"weight"`
}

// Alternative is a kind that scored but lost
type Alternative struct {
	Kind       certidao.Kind `json:"kind"`
	Confidence float64       `json:"confidence"`
}

// Classification is the outcome of Classify. Confidence is the winning
// kind's share of all evidence found, in [0, 1].
type Classification struct {
	Kind         certidao.Kind `json:"kind,omitempty"`
	Confidence   float64       `json:"confidence"`
	Reasons      []Reason      `json:"reasons,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// Classifier scores text against keyword rules
type Classifier struct {
	rules         []Rule
	minConfidence float64
}

// New returns a classifier with the default rules
func New() *Classifier {
	return NewWithRules(DefaultRules(), DefaultMinConfidence)
}

// NewWithRules returns a classifier using rules and the given threshold
func NewWithRules(rules []Rule, minConfidence float64) *Classifier {
	return &Classifier{rules: rules, minConfidence: minConfidence}
}

// Classify returns the most likely kind of text. When no kind reaches the
// confidence threshold the partial classification is returned together with
// ErrUnclassified.
func (c *Classifier) Classify(ctx context.Context, text string) (*Classification, error) {
	folded := certidao.Fold(text)

	scores := make(map[certidao.Kind]float64)
	reasons := make(map[certidao.Kind][]Reason)
	var total float64

	for _, rule := range c.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(folded, kw) {
				scores[rule.Kind] += rule.Weight
				reasons[rule.Kind] = append(reasons[rule.Kind], Reason{Rule: rule.Name, Evidence: kw, Weight: rule.Weight})
				total += rule.Weight
			}
		}
		for _, re := range rule.Patterns {
			if m := re.FindString(folded); m != "" {
				scores[rule.Kind] += rule.Weight
				reasons[rule.Kind] = append(reasons[rule.Kind], Reason{Rule: rule.Name, Evidence: m, Weight: rule.Weight})
				total += rule.Weight
			}
		}
	}

	if total == 0 {
		return &Classification{}, errors.WithHint(ErrUnclassified, "pass the document kind explicitly")
	}

	// Kinds() order breaks ties
	var best certidao.Kind
	for _, kind := range certidao.Kinds() {
		if scores[kind] > scores[best] {
			best = kind
		}
	}

	result := &Classification{
		Kind:       best,
		Confidence: scores[best] / total,
		Reasons:    reasons[best],
	}
	for _, kind := range certidao.Kinds() {
		if kind != best && scores[kind] > 0 {
			result.Alternatives = append(result.Alternatives, Alternative{Kind: kind, Confidence: scores[kind] / total})
		}
	}
	slices.SortStableFunc(result.Alternatives, func(a, b Alternative) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})

	if result.Confidence < c.minConfidence {
		kind := result.Kind
		result.Kind = ""
		return result, errors.WithHintf(
			errors.Wrapf(ErrUnclassified, "best guess %s at %.0f%%", kind, result.Confidence*100),
			"pass the document kind explicitly",
		)
	}
	return result, nil
}

package certidao

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
)

// maxCaptureInWarning bounds how much of a rejected capture is quoted back
const maxCaptureInWarning = 60

// Extractor applies a rule table to certificate text. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	rules map[Kind]map[string][]PatternRule
}

var defaultExtractor = NewExtractor()

// NewExtractor creates an extractor backed by the production rule table
func NewExtractor() *Extractor {
	e, err := NewExtractorWithRules(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("certidao: invalid default rule table: %v", err))
	}
	return e
}

// NewExtractorWithRules creates an extractor backed by a custom rule table.
// Every kind must be a supported kind and every field must belong to that
// kind's schema.
func NewExtractorWithRules(table RuleTable) (*Extractor, error) {
	e := &Extractor{rules: make(map[Kind]map[string][]PatternRule, len(table))}

	for kind, fields := range table {
		if !kind.Valid() {
			return nil, errors.Wrapf(ErrUnknownKind, "rule table kind %q", string(kind))
		}
		byField := make(map[string][]PatternRule, len(fields))
		schema := kind.Schema()
		for _, fr := range fields {
			if !slices.Contains(schema, fr.Field) {
				return nil, errors.Newf("field %q is not part of the %s schema", fr.Field, kind)
			}
			for _, r := range fr.Rules {
				if r.Pattern == nil || r.Normalize == nil {
					return nil, errors.Newf("rule %q for field %q needs a pattern and a normalizer", r.Name, fr.Field)
				}
				if r.Group < 0 || r.Group > r.Pattern.NumSubexp() {
					return nil, errors.Newf("rule %q selects group %d of %d", r.Name, r.Group, r.Pattern.NumSubexp())
				}
			}
			byField[fr.Field] = append(byField[fr.Field], fr.Rules...)
		}
		e.rules[kind] = byField
	}

	return e, nil
}

// Extract runs the default extractor. See Extractor.Extract.
func Extract(raw string, kind Kind) (*Result, error) {
	return defaultExtractor.Extract(raw, kind)
}

// Extract looks up every schema field of kind in raw. It never fails because
// of the text itself: fields that cannot be located are marked as not found
// and reported in Warnings. The only error is ErrUnknownKind.
func (e *Extractor) Extract(raw string, kind Kind) (*Result, error) {
	byField, ok := e.rules[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", string(kind))
	}

	schema := kind.Schema()
	result := &Result{
		Kind:     kind,
		Fields:   make(map[string]Field, len(schema)),
		Warnings: []string{},
	}

	for _, name := range schema {
		var (
			field    Field
			rejected []string
		)
		if IsListField(name) {
			field, rejected = matchList(name, byField[name], raw)
		} else {
			field, rejected = matchSingle(name, byField[name], raw)
		}

		result.Fields[name] = field
		result.Warnings = append(result.Warnings, rejected...)
		if !field.Found {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: not found", name))
		}
	}

	return result, nil
}

// matchSingle returns the first capture, in rule priority order, that its
// rule's normalizer accepts. Later occurrences of the same rule are tried
// before moving to the next rule.
func matchSingle(name string, rules []PatternRule, raw string) (Field, []string) {
	var rejected []string

	for _, r := range rules {
		first := true
		for _, sm := range r.Pattern.FindAllStringSubmatch(raw, -1) {
			capture := sm[r.Group]
			if value, ok := r.Normalize(capture); ok {
				return Field{Name: name, Value: value, Found: true, Rule: r.Name}, rejected
			}
			if first {
				rejected = append(rejected, rejectionWarning(name, r.Name, capture))
				first = false
			}
		}
	}

	return Field{Name: name}, rejected
}

// matchList collects every accepted capture of the first rule that yields at
// least one row.
func matchList(name string, rules []PatternRule, raw string) (Field, []string) {
	for _, r := range rules {
		var values []string
		for _, sm := range r.Pattern.FindAllStringSubmatch(raw, -1) {
			if value, ok := r.Normalize(sm[r.Group]); ok {
				values = append(values, value)
			}
		}
		if len(values) > 0 {
			return Field{Name: name, Values: values, Found: true, Rule: r.Name}, nil
		}
	}

	return Field{Name: name}, nil
}

func rejectionWarning(field, rule, capture string) string {
	capture, _ = NormalizeText(capture)
	if r := []rune(capture); len(r) > maxCaptureInWarning {
		capture = string(r[:maxCaptureInWarning]) + "..."
	}
	return fmt.Sprintf("%s: rule %s matched %q but the value was rejected", field, rule, capture)
}

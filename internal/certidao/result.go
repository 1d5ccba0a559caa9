package certidao

// Field holds the outcome of looking up one schema field.
// A field that was not found has Found == false and empty Value/Values; that
// is the explicit "not found" marker consumed by the form layer.
type Field struct {
	Name   string   `json:"name"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"` // list-shaped fields only
	Found  bool     `json:"found"`
	Rule   string   `json:"rule,omitempty"` // name of the rule that produced the value
}

// Result is the outcome of a single extraction call. Every field of the
// kind's schema is present in Fields.
type Result struct {
	Kind     Kind             `json:"document_kind"`
	Fields   map[string]Field `json:"fields"`
	Warnings []string         `json:"warnings"`
}

// Get returns the field named name
func (r *Result) Get(name string) (Field, bool) {
	f, ok := r.Fields[name]
	return f, ok
}

// Value returns the single value of name, or "" when it was not found
func (r *Result) Value(name string) string {
	return r.Fields[name].Value
}

// Found reports whether name was located in the text
func (r *Result) Found(name string) bool {
	return r.Fields[name].Found
}

// Missing lists the schema fields that were not found, in schema order
func (r *Result) Missing() []string {
	var missing []string
	for _, name := range r.Kind.Schema() {
		if !r.Fields[name].Found {
			missing = append(missing, name)
		}
	}
	return missing
}

// FoundCount returns how many schema fields were located
func (r *Result) FoundCount() int {
	n := 0
	for _, f := range r.Fields {
		if f.Found {
			n++
		}
	}
	return n
}

// Flat returns the field/value view handed to form population: single fields
// map to a string, list fields to a []string and missing fields to nil.
func (r *Result) Flat() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for name, f := range r.Fields {
		switch {
		case !f.Found:
			out[name] = nil
		case IsListField(name):
			values := make([]string, len(f.Values))
			copy(values, f.Values)
			out[name] = values
		default:
			out[name] = f.Value
		}
	}
	return out
}

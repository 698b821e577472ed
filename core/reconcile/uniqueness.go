package reconcile

import "fmt"

// CheckUniqueness reports every value of a unique field that appears in more
// than one candidate. Values are compared as folded natural keys; empty values
// are ignored. Errors are grouped per field, in the order of fields, and per
// value in order of first appearance.
func CheckUniqueness(candidates []Candidate, fields []UniqueField) []ValidationError {
	var out []ValidationError

	for _, f := range fields {
		lines := make(map[string][]int)
		first := make(map[string]string)
		var order []string

		for _, c := range candidates {
			raw := c.Fields.Get(f.Field)
			key := FoldKey(raw)
			if key == "" {
				continue
			}
			if _, seen := lines[key]; !seen {
				order = append(order, key)
				first[key] = raw
			}
			lines[key] = append(lines[key], c.Line)
		}

		for _, key := range order {
			if len(lines[key]) < 2 {
				continue
			}
			out = append(out, ValidationError{
				Kind:    KindBatchDuplicate,
				Line:    lines[key][0],
				Lines:   lines[key],
				Field:   f.Field,
				Value:   first[key],
				Message: fmt.Sprintf("%s %q", f.Label, first[key]),
			})
		}
	}
	return out
}

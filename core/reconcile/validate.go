package reconcile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Collect turns the raw batch into candidates. Blank rows are dropped, but
// they still count towards the line numbers of the rows after them.
func Collect(rows []Row, headerRows int) []Candidate {
	candidates := make([]Candidate, 0, len(rows))
	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		candidates = append(candidates, Candidate{
			Index:  i,
			Line:   i + headerRows + 1,
			Fields: row.Normalized(),
		})
	}
	return candidates
}

// Validate applies the rules to every candidate and returns one error per
// failing row, ordered by line. Batches of at least parallelThreshold rows are
// split in chunks and validated concurrently; a threshold <= 0 disables that.
func Validate(ctx context.Context, candidates []Candidate, rules []Rule, parallelThreshold int) ([]ValidationError, error) {
	slots := make([]*ValidationError, len(candidates))

	if parallelThreshold <= 0 || len(candidates) < parallelThreshold {
		for i := range candidates {
			slots[i] = checkRow(candidates[i], rules)
		}
		return collectSlots(slots), nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(candidates) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				slots[i] = checkRow(candidates[i], rules)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collectSlots(slots), nil
}

// checkRow returns the first rule violation of the row, or nil.
func checkRow(c Candidate, rules []Rule) *ValidationError {
	for _, rule := range rules {
		value := c.Fields.Get(rule.Column())
		if msg := rule.Check(value); msg != "" {
			return &ValidationError{
				Kind:    KindFieldValidation,
				Line:    c.Line,
				Field:   rule.Column(),
				Value:   value,
				Message: msg,
			}
		}
	}
	return nil
}

func collectSlots(slots []*ValidationError) []ValidationError {
	var out []ValidationError
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

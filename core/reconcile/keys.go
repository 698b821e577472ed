package reconcile

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldKey returns the comparable form of a natural key: trimmed, NFC-normalized
// and case-folded. Every comparison of natural keys goes through this function.
func FoldKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser keeps state, so one is created per call.
	return cases.Fold().String(norm.NFC.String(s))
}

// keySet collects the folded, non-empty values of the given raw keys.
func keySet(keys ...string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, k := range keys {
		if f := FoldKey(k); f != "" {
			set.Add(f)
		}
	}
	return set
}

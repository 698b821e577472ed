package reconcile

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
)

// Rule is a single, independent validation check on one field of a row.
// Rules are evaluated in order; the first failing rule of a row is reported
// and the remaining rules of that row are skipped.
type Rule interface {
	// Column returns the field the rule inspects.
	Column() string

	// Check validates the trimmed field value and returns a message
	// describing the problem, or "" if the value passes.
	Check(value string) string
}

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Required fails when the field is empty.
func Required(field, label string) Rule {
	return requiredRule{field: field, label: label}
}

type requiredRule struct {
	field, label string
}

func (r requiredRule) Column() string { return r.field }

func (r requiredRule) Check(value string) string {
	if value == "" {
		return fmt.Sprintf("%s is required", r.label)
	}
	return ""
}

// MinLength fails when a non-empty value has fewer than n characters.
func MinLength(field, label string, n int) Rule {
	return minLengthRule{field: field, label: label, min: n}
}

type minLengthRule struct {
	field, label string
	min          int
}

func (r minLengthRule) Column() string { return r.field }

func (r minLengthRule) Check(value string) string {
	if value != "" && utf8.RuneCountInString(value) < r.min {
		return fmt.Sprintf("%s must be at least %d characters", r.label, r.min)
	}
	return ""
}

// MaxLength fails when a value has more than n characters.
func MaxLength(field, label string, n int) Rule {
	return maxLengthRule{field: field, label: label, max: n}
}

type maxLengthRule struct {
	field, label string
	max          int
}

func (r maxLengthRule) Column() string { return r.field }

func (r maxLengthRule) Check(value string) string {
	if utf8.RuneCountInString(value) > r.max {
		return fmt.Sprintf("%s must not exceed %d characters", r.label, r.max)
	}
	return ""
}

// Pattern fails when a non-empty value does not match re.
func Pattern(field, label string, re *regexp.Regexp) Rule {
	return patternRule{field: field, label: label, re: re}
}

// Digits fails when a non-empty value contains anything but ASCII digits.
func Digits(field, label string) Rule {
	return Pattern(field, label, digitsPattern)
}

// Email fails when a non-empty value is not shaped like an e-mail address.
func Email(field, label string) Rule {
	return Pattern(field, label, emailPattern)
}

type patternRule struct {
	field, label string
	re           *regexp.Regexp
}

func (r patternRule) Column() string { return r.field }

func (r patternRule) Check(value string) string {
	if value != "" && !r.re.MatchString(value) {
		return fmt.Sprintf("%s %q has an invalid format", r.label, value)
	}
	return ""
}

// OneOf fails when the value is not one of the allowed values. An empty value
// fails too. The comparison is case-insensitive.
func OneOf(field, label string, values ...string) Rule {
	return oneOfRule{field: field, label: label, values: values}
}

type oneOfRule struct {
	field, label string
	values       []string
}

func (r oneOfRule) Column() string { return r.field }

func (r oneOfRule) Check(value string) string {
	if _, ok := Canonical(r.values, value); ok {
		return ""
	}
	quoted := make([]string, len(r.values))
	for i, v := range r.values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%s must be %s", r.label, joinAlternatives(quoted))
}

// Exists fails when the value is not present in the reference set, e.g. a
// document type that does not exist. Names are compared as folded keys.
func Exists(field, label string, reference []string) Rule {
	return existsRule{field: field, label: label, reference: keySet(reference...)}
}

type existsRule struct {
	field, label string
	reference    mapset.Set[string]
}

func (r existsRule) Column() string { return r.field }

func (r existsRule) Check(value string) string {
	if r.reference.Contains(FoldKey(value)) {
		return ""
	}
	return fmt.Sprintf("%s %q is not valid", r.label, value)
}

// Optional wraps a rule so that an empty value always passes.
func Optional(r Rule) Rule {
	return optionalRule{Rule: r}
}

type optionalRule struct {
	Rule
}

func (r optionalRule) Check(value string) string {
	if value == "" {
		return ""
	}
	return r.Rule.Check(value)
}

// Canonical returns the allowed value matching v case-insensitively.
func Canonical(allowed []string, v string) (string, bool) {
	folded := FoldKey(v)
	if folded == "" {
		return "", false
	}
	for _, a := range allowed {
		if FoldKey(a) == folded {
			return a, true
		}
	}
	return "", false
}

// joinAlternatives renders ["a","b","c"] as `a, b or c`.
func joinAlternatives(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

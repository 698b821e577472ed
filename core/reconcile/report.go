package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Summarize renders the confirmation shown after a successful import.
func Summarize(labels Labels, r Result) string {
	plural := title(labels.Plural)

	var b strings.Builder
	b.WriteString("Import completed successfully!\n\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "• New %s created: %d\n", labels.Plural, r.Created)
	fmt.Fprintf(&b, "• %s updated: %d\n", plural, r.Updated)
	fmt.Fprintf(&b, "• %s deleted (without %s): %d\n", plural, labels.Dependents, r.Deleted)
	fmt.Fprintf(&b, "• Total rows processed: %d\n", r.TotalProcessed)
	b.WriteString("\nThis operation is irreversible.")
	return b.String()
}

// DescribePlan renders a plan that has not been applied yet.
func DescribePlan(labels Labels, p *Plan) string {
	plural := title(labels.Plural)

	var b strings.Builder
	b.WriteString("Import plan (nothing has been saved yet):\n\n")
	fmt.Fprintf(&b, "• %s to create: %d\n", plural, len(p.ToCreate))
	fmt.Fprintf(&b, "• %s to update: %d\n", plural, len(p.ToUpdate))
	fmt.Fprintf(&b, "• %s to delete (without %s): %d\n", plural, labels.Dependents, len(p.ToDelete))
	fmt.Fprintf(&b, "• Total rows processed: %d\n", p.TotalProcessed)
	if len(p.ToDelete) > 0 {
		fmt.Fprintf(&b, "\n%s not present in the file will be permanently deleted:\n", plural)
		for _, d := range p.ToDelete {
			fmt.Fprintf(&b, "  - %s\n", d.Key())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatErrors renders validation errors as one block, field errors first,
// then duplicated values.
func FormatErrors(labels Labels, errs []ValidationError) string {
	var fields, dups []string
	for _, e := range errs {
		if e.Kind == KindBatchDuplicate {
			dups = append(dups, "• "+e.Error())
		} else {
			fields = append(fields, e.Error())
		}
	}

	var b strings.Builder
	if len(fields) > 0 {
		b.WriteString("Validation errors in the import file:\n\n")
		b.WriteString(strings.Join(fields, "\n"))
	}
	if len(dups) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Duplicated %s in the import file:\n", labels.Plural)
		b.WriteString(strings.Join(dups, "\n"))
		fmt.Fprintf(&b, "\n\nEach %s must appear only once.", labels.Singular)
	}
	return b.String()
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

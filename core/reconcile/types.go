package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is a single candidate record as handed over by the spreadsheet parser.
// Keys are the expected column names, values are the raw cell contents.
type Row map[string]string

// IsBlank reports whether every field of the row is empty after trimming.
// Blank rows are treated as intentional spacer lines and never validated.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Get returns the trimmed value of a field, or "" if the field is absent.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Normalized returns a copy of the row with every value trimmed.
func (r Row) Normalized() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// Candidate is a non-blank row of the incoming batch together with its position.
type Candidate struct {
	// Index is the 0-based position of the row among the data rows, blank rows included.
	Index int `json:"index"`

	// Line is the 1-based spreadsheet row number shown to users.
	Line int `json:"line"`

	// Fields holds the trimmed field values.
	Fields Row `json:"fields"`
}

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	// KindFieldValidation marks a row that failed a required/format/length/enum/reference rule.
	KindFieldValidation ErrorKind = "field_validation"
	// KindBatchDuplicate marks a natural key value that repeats within the batch.
	KindBatchDuplicate ErrorKind = "batch_duplicate"
)

// ValidationError describes one problem found in the incoming batch.
// It is never persisted; a batch with any ValidationError is rejected as a whole.
type ValidationError struct {
	// Kind is the error category.
	Kind ErrorKind `json:"kind"`

	// Line is the first spreadsheet row the error refers to.
	Line int `json:"line"`

	// Lines lists every spreadsheet row involved. Only set for duplicates.
	Lines []int `json:"lines,omitempty"`

	// Field is the column that failed.
	Field string `json:"field,omitempty"`

	// Value is the offending value, when relevant.
	Value string `json:"value,omitempty"`

	// Message is the human-readable description without the row prefix.
	Message string `json:"message"`
}

// Error renders the error the way it is shown to the end user.
func (e ValidationError) Error() string {
	if e.Kind == KindBatchDuplicate {
		rows := make([]string, len(e.Lines))
		for i, l := range e.Lines {
			rows[i] = strconv.Itoa(l)
		}
		return fmt.Sprintf("%s repeated in rows: %s", e.Message, strings.Join(rows, ", "))
	}
	return fmt.Sprintf("Row %d: %s", e.Line, e.Message)
}

// Entity is the reconciliation view of a persisted record.
// It is loaded fresh for every import and never retained.
type Entity struct {
	// ID is the surrogate identifier in storage.
	ID string

	// PrimaryKey is the raw primary natural key (e.g. document number).
	PrimaryKey string

	// SecondaryKey is the raw fallback natural key, empty if the entity type has none.
	SecondaryKey string

	// Dependents counts transactional records referencing this entity.
	Dependents int64
}

// Update pairs a candidate with the persisted record it will overwrite.
type Update struct {
	Candidate Candidate `json:"candidate"`
	EntityID  string    `json:"entity_id"`
}

// Deletion is a persisted record that is safe to delete.
// Its fields are unexported so a Deletion can only be produced by SelectDeletions,
// which never selects a referenced entity.
type Deletion struct {
	id  string
	key string
}

// ID returns the persisted identifier to delete.
func (d Deletion) ID() string { return d.id }

// Key returns the natural key of the deleted record, for reporting.
func (d Deletion) Key() string { return d.key }

// Plan is the computed set of creates, updates and deletes for one import call.
// It is built once, consumed once by ApplyPlan and then discarded.
type Plan struct {
	// Entity is the adapter name (e.g. "clients").
	Entity string `json:"entity"`

	// Tenant is the owning scope all operations are restricted to.
	Tenant string `json:"tenant"`

	// ToCreate holds candidates without a persisted match.
	ToCreate []Candidate `json:"to_create"`

	// ToUpdate holds candidates matched to an existing record.
	ToUpdate []Update `json:"to_update"`

	// ToDelete holds unreferenced records absent from the batch.
	ToDelete []Deletion `json:"-"`

	// TotalProcessed is the number of non-blank rows in the batch.
	TotalProcessed int `json:"total_processed"`

	consumed bool
}

// DeleteIDs returns the identifiers of all planned deletions.
func (p *Plan) DeleteIDs() []string {
	ids := make([]string, len(p.ToDelete))
	for i, d := range p.ToDelete {
		ids[i] = d.id
	}
	return ids
}

// Preview returns the plan counts as a Result, without anything having been applied.
func (p *Plan) Preview() Result {
	return Result{
		Created:        len(p.ToCreate),
		Updated:        len(p.ToUpdate),
		Deleted:        len(p.ToDelete),
		TotalProcessed: p.TotalProcessed,
	}
}

// Result summarizes an applied plan.
type Result struct {
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Deleted        int `json:"deleted"`
	TotalProcessed int `json:"total_processed"`
}

// Labels holds the wording an adapter uses in messages and summaries.
type Labels struct {
	// Singular is the entity name, e.g. "client".
	Singular string

	// Plural is the entity name in plural, e.g. "clients".
	Plural string

	// Dependents names the transactional records protecting an entity, e.g. "sales".
	Dependents string
}

// UniqueField is a field whose values must not repeat within a batch.
type UniqueField struct {
	Field string
	Label string
}

// Options controls whether a planned import is actually applied.
type Options struct {
	// DryRun stops after planning; nothing is written.
	DryRun bool

	// Confirmed indicates the caller accepted the irreversible deletions.
	// If false, the import stops after planning regardless of DryRun.
	Confirmed bool
}

// Config holds engine settings loaded from configuration.
type Config struct {
	// TimeoutSeconds bounds the apply transaction.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`

	// ParallelThreshold is the batch size from which rows are validated concurrently.
	ParallelThreshold int `mapstructure:"parallel_threshold" default:"2000"`

	// HeaderRows is the number of header rows above the data in the source sheet.
	HeaderRows int `mapstructure:"header_rows" default:"1"`

	// LookupTTLSeconds is how long reference data for foreign-key rules is cached. 0 disables caching.
	LookupTTLSeconds int `mapstructure:"lookup_ttl_seconds" default:"300"`
}

// LookupTTL returns the reference data cache lifetime.
func (c Config) LookupTTL() time.Duration {
	return time.Duration(c.LookupTTLSeconds) * time.Second
}

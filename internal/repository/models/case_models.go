package models

import (
	"database/sql"
	"strings"
	"time"
)

// Column is the logical name of a case dataset column.
type Column string

const (
	ColumnTechnology      Column = "Technology"
	ColumnStatus          Column = "Status"
	ColumnPriority        Column = "Priority"
	ColumnOpenedDate      Column = "Opened Date"
	ColumnClosedDate      Column = "Closed Date"
	ColumnDaysOpen        Column = "Days Open"
	ColumnInitialResponse Column = "Initial Response Time (minutes)"
	ColumnFinalResolution Column = "Final Resolution Time (days)"
	ColumnRMACount        Column = "RMA Count"
	ColumnCaseOwner       Column = "Case Owner"
	ColumnContractType    Column = "Contract Type"
)

// CanonicalHeader is the column order used when a dataset has no header of its own.
var CanonicalHeader = []string{
	string(ColumnTechnology),
	string(ColumnStatus),
	string(ColumnPriority),
	string(ColumnOpenedDate),
	string(ColumnClosedDate),
	string(ColumnDaysOpen),
	string(ColumnInitialResponse),
	string(ColumnFinalResolution),
	string(ColumnRMACount),
	string(ColumnCaseOwner),
	string(ColumnContractType),
}

// CaseRecord is one service request.
type CaseRecord struct {
	Technology      string
	Status          string
	Priority        string
	OpenedAt        time.Time // zero when unknown
	ClosedAt        time.Time // zero when unknown or still open
	DaysOpen        sql.NullFloat64
	InitialResponse sql.NullFloat64 // minutes
	FinalResolution sql.NullFloat64 // days
	RMACount        int64
	Owner           string
	ContractType    string
	Extra           map[string]string `json:",omitempty"`
}

// IsClosed reports whether the status marks the case as closed.
func (r CaseRecord) IsClosed() bool {
	return strings.Contains(strings.ToLower(r.Status), "closed")
}

// IsProactive reports whether the case came from preventive monitoring.
func (r CaseRecord) IsProactive() bool {
	return strings.Contains(strings.ToLower(r.ContractType), "proactive")
}

// IsHighPriority reports whether the case is P1 or P2.
func (r CaseRecord) IsHighPriority() bool {
	p := strings.ToUpper(r.Priority)
	return strings.Contains(p, "P1") || strings.Contains(p, "P2")
}

// Value returns the categorical value of a filterable column.
func (r CaseRecord) Value(c Column) (string, bool) {
	switch c {
	case ColumnTechnology:
		return r.Technology, true
	case ColumnStatus:
		return r.Status, true
	case ColumnPriority:
		return r.Priority, true
	case ColumnCaseOwner:
		return r.Owner, true
	case ColumnContractType:
		return r.ContractType, true
	default:
		return "", false
	}
}

// LoadStats counts the per-field recoveries made while loading.
type LoadStats struct {
	Rows                int
	CoercedDates        int
	CoercedNumbers      int
	InvariantViolations int
	Encoding            string
}

// Dataset is the raw, typed case table produced by a source.
type Dataset struct {
	Source  string
	Header  []string
	Records []CaseRecord
	Stats   LoadStats
	Missing bool
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

package service

import (
	"fmt"
	"sort"

	"github.com/godilite/caseops/internal/repository/models"
)

// FilterableColumns are the categorical columns exposed as filters, in display order.
var FilterableColumns = []models.Column{
	models.ColumnTechnology,
	models.ColumnStatus,
	models.ColumnPriority,
	models.ColumnCaseOwner,
}

// requiredByDefault are the columns whose default selection is every observed
// value, so a record with a blank value there is dropped unless the column is
// selected explicitly. Case Owner is optional and stays out of this list.
var requiredByDefault = []models.Column{
	models.ColumnTechnology,
	models.ColumnStatus,
	models.ColumnPriority,
}

// Selection maps a filterable column to the chosen values. An absent column
// selects every option FilterOptions would list for it (Case Owner is not
// filtered at all); a column with an empty set matches nothing.
type Selection map[models.Column][]string

// Validate rejects columns that are not filterable. Values are not checked:
// a value absent from the data simply matches no record.
func (s Selection) Validate() error {
	for col := range s {
		if !isFilterable(col) {
			return fmt.Errorf("%w: column %q is not filterable", ErrInvalidSelection, col)
		}
	}
	return nil
}

func isFilterable(col models.Column) bool {
	for _, c := range FilterableColumns {
		if c == col {
			return true
		}
	}
	return false
}

// FilterOptions returns the sorted, deduplicated, non-empty values of each
// filterable column. Call it on the unfiltered dataset so option lists stay stable.
func FilterOptions(records []models.CaseRecord) map[models.Column][]string {
	out := make(map[models.Column][]string, len(FilterableColumns))
	for _, col := range FilterableColumns {
		seen := make(map[string]struct{})
		values := make([]string, 0)
		for _, r := range records {
			v, _ := r.Value(col)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)
		out[col] = values
	}
	return out
}

// ApplyFilters returns the records matching every column of the selection.
// An unselected column behaves like the full FilterOptions set for that
// column. The input slice is never modified.
func ApplyFilters(records []models.CaseRecord, sel Selection) []models.CaseRecord {
	sets := make(map[models.Column]map[string]struct{}, len(sel))
	for col, values := range sel {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		sets[col] = set
	}

	var nonBlank []models.Column
	for _, col := range requiredByDefault {
		if _, ok := sel[col]; !ok {
			nonBlank = append(nonBlank, col)
		}
	}

	out := make([]models.CaseRecord, 0, len(records))
	for _, r := range records {
		if matches(r, sets) && hasValues(r, nonBlank) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r models.CaseRecord, sets map[models.Column]map[string]struct{}) bool {
	for col, set := range sets {
		v, ok := r.Value(col)
		if !ok {
			return false
		}
		if _, in := set[v]; !in {
			return false
		}
	}
	return true
}

func hasValues(r models.CaseRecord, cols []models.Column) bool {
	for _, col := range cols {
		if v, _ := r.Value(col); v == "" {
			return false
		}
	}
	return true
}

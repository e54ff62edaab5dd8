package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godilite/caseops/internal/repository/models"
)

var (
	ErrUnreadableSource = errors.New("data could not be loaded")
	ErrSchemaMismatch   = errors.New("dataset schema mismatch")
)

// columnAliases lists the exact header spellings accepted for each column.
var columnAliases = map[models.Column][]string{
	models.ColumnTechnology:      {"Technology"},
	models.ColumnStatus:          {"Status"},
	models.ColumnPriority:        {"Priority", "Priority - Current (Text)"},
	models.ColumnOpenedDate:      {"Opened Date"},
	models.ColumnClosedDate:      {"Closed Date"},
	models.ColumnDaysOpen:        {"Days Open"},
	models.ColumnInitialResponse: {"Initial Response Time (minutes)", "Initial Response Time Min"},
	models.ColumnFinalResolution: {"Final Resolution Time (days)", "Final Resolution Time (Days)"},
	models.ColumnRMACount:        {"RMA Count"},
	models.ColumnCaseOwner:       {"Case Owner"},
	models.ColumnContractType:    {"Contract Type"},
}

var requiredColumns = []models.Column{
	models.ColumnTechnology,
	models.ColumnStatus,
	models.ColumnPriority,
	models.ColumnOpenedDate,
	models.ColumnClosedDate,
	models.ColumnDaysOpen,
	models.ColumnInitialResponse,
	models.ColumnFinalResolution,
	models.ColumnRMACount,
}

// schema maps a concrete header onto logical columns.
type schema struct {
	header  []string
	index   map[models.Column]int
	columns []models.Column // per header position, "" for extra columns
}

func resolveSchema(header []string) (*schema, error) {
	s := &schema{
		header:  header,
		index:   make(map[models.Column]int, len(columnAliases)),
		columns: make([]models.Column, len(header)),
	}

	byName := make(map[string]models.Column)
	for col, aliases := range columnAliases {
		for _, a := range aliases {
			byName[a] = col
		}
	}

	for i, h := range header {
		col, ok := byName[strings.TrimSpace(h)]
		if !ok {
			continue
		}
		if _, dup := s.index[col]; dup {
			continue
		}
		s.index[col] = i
		s.columns[i] = col
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := s.index[col]; !ok {
			missing = append(missing, string(col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return s, nil
}

func (s *schema) field(row []string, col models.Column) string {
	i, ok := s.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

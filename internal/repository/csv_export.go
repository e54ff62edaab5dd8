package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/godilite/caseops/internal/repository/models"
)

// WriteCSV writes records using the given header layout, so a filtered view
// keeps the column structure of the file it was loaded from.
func WriteCSV(w io.Writer, header []string, records []models.CaseRecord) error {
	if len(header) == 0 {
		header = models.CanonicalHeader
	}
	sc, err := resolveSchema(header)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export header: %w", err)
	}

	row := make([]string, len(header))
	for i, rec := range records {
		for j, col := range sc.columns {
			if col == "" {
				row[j] = rec.Extra[header[j]]
				continue
			}
			row[j] = formatField(rec, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatField(rec models.CaseRecord, col models.Column) string {
	switch col {
	case models.ColumnOpenedDate:
		return formatDate(rec.OpenedAt)
	case models.ColumnClosedDate:
		return formatDate(rec.ClosedAt)
	case models.ColumnDaysOpen:
		return formatDuration(rec.DaysOpen)
	case models.ColumnInitialResponse:
		return formatDuration(rec.InitialResponse)
	case models.ColumnFinalResolution:
		return formatDuration(rec.FinalResolution)
	case models.ColumnRMACount:
		return strconv.FormatInt(rec.RMACount, 10)
	default:
		v, _ := rec.Value(col)
		return v
	}
}

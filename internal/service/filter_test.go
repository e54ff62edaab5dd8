package service

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenarioRecords() []models.CaseRecord {
	return []models.CaseRecord{
		{Technology: "Cloud", Status: "Open", Priority: "P1", DaysOpen: days(5)},
		{Technology: "Network", Status: "Closed", Priority: "P3", DaysOpen: days(12)},
		{Technology: "Cloud", Status: "Open", Priority: "P2", DaysOpen: days(45)},
	}
}

func TestApplyFilters(t *testing.T) {
	records := []models.CaseRecord{
		{Technology: "Cloud", Status: "Open", Priority: "P1", Owner: "Avery"},
		{Technology: "Network", Status: "Closed", Priority: "P3", Owner: "Jordan"},
		{Technology: "Cloud", Status: "Closed - Duplicate", Priority: "P2", Owner: ""},
		{Technology: "Security", Status: "Pending Closure", Priority: "P1", Owner: "Avery"},
	}

	t.Run("single column", func(t *testing.T) {
		got := ApplyFilters(records, Selection{models.ColumnTechnology: {"Cloud"}})
		require.Len(t, got, 2)
		for _, r := range got {
			assert.Equal(t, "Cloud", r.Technology)
		}
	})

	t.Run("conjunction across columns", func(t *testing.T) {
		got := ApplyFilters(records, Selection{
			models.ColumnTechnology: {"Cloud", "Security"},
			models.ColumnPriority:   {"P1"},
		})
		require.Len(t, got, 2)
		assert.Equal(t, "Cloud", got[0].Technology)
		assert.Equal(t, "Security", got[1].Technology)
	})

	t.Run("empty set matches nothing", func(t *testing.T) {
		got := ApplyFilters(records, Selection{models.ColumnStatus: {}})
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("nil selection keeps everything", func(t *testing.T) {
		got := ApplyFilters(records, nil)
		assert.Equal(t, records, got)
	})

	t.Run("unknown value matches nothing", func(t *testing.T) {
		got := ApplyFilters(records, Selection{models.ColumnTechnology: {"Mainframe"}})
		assert.Empty(t, got)
	})

	t.Run("full option set keeps everything", func(t *testing.T) {
		opts := FilterOptions(records)
		sel := Selection{}
		for _, col := range requiredByDefault {
			sel[col] = opts[col]
		}
		assert.Len(t, ApplyFilters(records, sel), len(records))
	})

	t.Run("soundness and completeness", func(t *testing.T) {
		sel := Selection{models.ColumnStatus: {"Open", "Pending Closure"}}
		got := ApplyFilters(records, sel)
		inResult := 0
		for _, r := range records {
			if r.Status == "Open" || r.Status == "Pending Closure" {
				inResult++
			}
		}
		assert.Len(t, got, inResult)
		for _, r := range got {
			assert.Contains(t, sel[models.ColumnStatus], r.Status)
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		before := append([]models.CaseRecord(nil), records...)
		_ = ApplyFilters(records, Selection{models.ColumnTechnology: {"Network"}})
		assert.Equal(t, before, records)
	})
}

func TestApplyFilters_DefaultMatchesExplicitOptions(t *testing.T) {
	records := []models.CaseRecord{
		{Technology: "Cloud", Status: "Open", Priority: "P1", Owner: "Avery"},
		{Technology: "", Status: "Open", Priority: "P2", Owner: "Riley"},
		{Technology: "Network", Status: "", Priority: "P1"},
		{Technology: "Network", Status: "Closed", Priority: ""},
		{Technology: "Security", Status: "Closed", Priority: "P3"},
	}

	opts := FilterOptions(records)
	explicit := Selection{}
	for _, col := range requiredByDefault {
		explicit[col] = opts[col]
	}

	def := ApplyFilters(records, nil)
	assert.Equal(t, ApplyFilters(records, explicit), def)
	require.Len(t, def, 2)
	assert.Equal(t, "Cloud", def[0].Technology)
	assert.Equal(t, "Security", def[1].Technology)

	t.Run("blank owner passes while owner is unselected", func(t *testing.T) {
		assert.Len(t, ApplyFilters(records, Selection{models.ColumnTechnology: {"Security"}}), 1)
	})

	t.Run("explicit column lifts the default for that column only", func(t *testing.T) {
		got := ApplyFilters(records, Selection{models.ColumnTechnology: {"", "Cloud"}})
		assert.Len(t, got, 2)
	})
}

func TestFilterOptions(t *testing.T) {
	records := []models.CaseRecord{
		{Technology: "Network", Status: "Open", Priority: "P2", Owner: "Riley"},
		{Technology: "Cloud", Status: "Open", Priority: "P1"},
		{Technology: "Network", Status: "Closed", Priority: "P1", Owner: "Avery"},
	}

	opts := FilterOptions(records)

	assert.Equal(t, []string{"Cloud", "Network"}, opts[models.ColumnTechnology])
	assert.Equal(t, []string{"Closed", "Open"}, opts[models.ColumnStatus])
	assert.Equal(t, []string{"P1", "P2"}, opts[models.ColumnPriority])
	assert.Equal(t, []string{"Avery", "Riley"}, opts[models.ColumnCaseOwner])

	empty := FilterOptions(nil)
	assert.Len(t, empty, len(FilterableColumns))
	assert.Empty(t, empty[models.ColumnTechnology])
}

func TestSelectionValidate(t *testing.T) {
	assert.NoError(t, Selection{models.ColumnTechnology: {"Cloud"}, models.ColumnCaseOwner: nil}.Validate())
	assert.NoError(t, Selection(nil).Validate())

	err := Selection{models.ColumnDaysOpen: {"5"}}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSelection))

	err = Selection{"Region": {"EMEA"}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

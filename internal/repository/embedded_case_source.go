package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/godilite/caseops/internal/repository/models"
)

//go:embed sample/cases.csv
var sampleCases []byte

const embeddedIdentity = "embedded:sample"

// EmbeddedCaseSource serves the small literal dataset compiled into the binary.
type EmbeddedCaseSource struct{}

func NewEmbeddedCaseSource() *EmbeddedCaseSource {
	return &EmbeddedCaseSource{}
}

func (EmbeddedCaseSource) Name() string {
	return embeddedIdentity
}

func (EmbeddedCaseSource) Identity(ctx context.Context) (string, error) {
	return embeddedIdentity, nil
}

func (EmbeddedCaseSource) Load(ctx context.Context) (*models.Dataset, error) {
	ds, err := ParseCSV(sampleCases)
	if err != nil {
		return nil, fmt.Errorf("embedded sample: %w", err)
	}
	ds.Source = embeddedIdentity
	return ds, nil
}

package guide

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// Sheet names of the XLSX guide, in workbook order.
const (
	SheetTests       = "Tests"
	SheetAssumptions = "Assumptions"
	SheetDesigns     = "Study Designs"
	SheetModels      = "Regression Models"
	SheetGlossary    = "Glossary"
)

type sheet struct {
	name    string
	headers []any
	rows    [][]any
}

// XLSX renders the guide as a workbook with one sheet per table.
func XLSX(cat *catalog.Catalog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets(cat) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", s.name, err)
		}

		if err := f.SetSheetRow(s.name, "A1", &s.headers); err != nil {
			return nil, fmt.Errorf("writing %s headers: %w", s.name, err)
		}
		if err := f.SetRowStyle(s.name, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("styling %s headers: %w", s.name, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, fmt.Errorf("writing %s row %d: %w", s.name, r+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func sheets(cat *catalog.Catalog) []sheet {
	tests := sheet{
		name:    SheetTests,
		headers: []any{"ID", "Name", "Category", "Outcome Types", "Comparisons", "Study Designs", "Assumptions", "Alternatives"},
	}
	for _, t := range cat.Tests() {
		tests.rows = append(tests.rows, []any{
			t.ID, t.DisplayName, string(t.Category),
			join(t.ApplicableTo.OutcomeTypes), join(t.ApplicableTo.ComparisonTypes), join(t.ApplicableTo.StudyDesigns),
			strings.Join(assumptionNames(cat, t.Assumptions), ", "),
			strings.Join(testNames(cat, t.Alternatives), ", "),
		})
	}

	assumptions := sheet{
		name:    SheetAssumptions,
		headers: []any{"ID", "Name", "Description", "How To Check", "If Violated", "Remedies"},
	}
	for _, a := range cat.Assumptions() {
		assumptions.rows = append(assumptions.rows, []any{
			string(a.ID), a.Name, a.Description,
			strings.Join(a.HowToCheck, "\n"), a.WhatIfViolated, strings.Join(a.Remedies, "\n"),
		})
	}

	designs := sheet{
		name:    SheetDesigns,
		headers: []any{"ID", "Name", "Temporality", "Intervention", "Randomization", "Evidence"},
	}
	for _, d := range cat.StudyDesigns() {
		c := d.Characteristics
		designs.rows = append(designs.rows, []any{
			string(d.ID), d.Name, string(c.Temporality), c.Intervention, c.Randomization, string(d.StrengthOfEvidence),
		})
	}

	models := sheet{
		name:    SheetModels,
		headers: []any{"ID", "Name", "Outcome", "Equation", "When To Use"},
	}
	for _, m := range cat.RegressionModels() {
		models.rows = append(models.rows, []any{m.ID, m.Name, string(m.OutcomeType), m.Equation, m.WhenToUse})
	}

	glossary := sheet{
		name:    SheetGlossary,
		headers: []any{"ID", "Term", "Category", "Definition"},
	}
	for _, g := range cat.Glossary() {
		glossary.rows = append(glossary.rows, []any{g.ID, g.Term, string(g.Category), g.Definition})
	}

	return []sheet{tests, assumptions, designs, models, glossary}
}

package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/carehours/carebalance/core/balance/changelog"
	"github.com/carehours/carebalance/core/model"
)

// Fill colors matching the established workbook conventions. The balancing
// core only emits categories; this adapter owns the mapping to styles.
const (
	colorRed       = "FF0000"
	colorGreen     = "00FF00"
	colorOrange    = "FFA500"
	colorGreenFont = "00B050"
)

// Writer renders the balanced dataset back into an annotated workbook:
// day blocks with formula-driven totals and pending rows, category styling,
// and a Summary sheet listing the change log.
type Writer struct {
	catalog *model.ProviderCatalog
}

// NewWriter returns a writer using the catalog's daily target for the pending
// formulas.
func NewWriter(cat *model.ProviderCatalog) *Writer {
	return &Writer{catalog: cat}
}

type cellStyles struct {
	red       int
	green     int
	orange    int
	greenFont int
	bold      int
}

func newCellStyles(f *excelize.File) (cellStyles, error) {
	var s cellStyles
	var err error
	fill := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
	}
	if s.red, err = fill(colorRed); err != nil {
		return s, err
	}
	if s.green, err = fill(colorGreen); err != nil {
		return s, err
	}
	if s.orange, err = fill(colorOrange); err != nil {
		return s, err
	}
	if s.greenFont, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: colorGreenFont}}); err != nil {
		return s, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	return s, nil
}

// WriteFile renders days and records into a workbook at path.
func (w *Writer) WriteFile(path string, days []*model.ScheduleDay, individuals []string, records []changelog.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	styles, err := newCellStyles(f)
	if err != nil {
		return err
	}

	cellCat, newNames, unbalanced := indexRecords(records)

	row := 1
	if err := w.writeHeader(f, styles, individuals, row); err != nil {
		return err
	}
	row++

	for _, day := range days {
		if err := w.writeDay(f, styles, day, individuals, row, cellCat, newNames, unbalanced); err != nil {
			return err
		}
		// provider rows + date, totals, pending and a separator.
		row += len(day.Providers) + 4
	}

	if err := w.writeSummary(f, styles, records); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func (w *Writer) writeHeader(f *excelize.File, styles cellStyles, individuals []string, row int) error {
	headers := append([]string{"Service Provider"}, individuals...)
	headers = append(headers, "Provider Total")
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, cell, cell, styles.bold); err != nil {
			return err
		}
	}
	return nil
}

//gocyclo:ignore
func (w *Writer) writeDay(f *excelize.File, styles cellStyles, day *model.ScheduleDay, individuals []string, row int,
	cellCat map[string]changelog.Category, newNames map[string]bool, unbalanced map[string]bool) error {

	dateCell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, dateCell, day.DateString()); err != nil {
		return err
	}
	if unbalanced[day.DateString()] {
		if err := f.SetCellStyle(SheetName, dateCell, dateCell, styles.red); err != nil {
			return err
		}
	}

	firstProvider := row + 1
	for i, p := range day.Providers {
		r := firstProvider + i
		nameCell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, nameCell, p.Name); err != nil {
			return err
		}
		if newNames[day.DateString()+"|"+p.Name] {
			if err := f.SetCellStyle(SheetName, nameCell, nameCell, styles.greenFont); err != nil {
				return err
			}
		}
		for j, ind := range individuals {
			cell, err := excelize.CoordinatesToCellName(j+2, r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, p.Hours[ind]); err != nil {
				return err
			}
			switch cellCat[day.DateString()+"|"+p.Name+"|"+ind] {
			case changelog.CategoryAddition:
				err = f.SetCellStyle(SheetName, cell, cell, styles.green)
			case changelog.CategoryModification:
				err = f.SetCellStyle(SheetName, cell, cell, styles.orange)
			}
			if err != nil {
				return err
			}
		}
		totalCol, err := excelize.ColumnNumberToName(len(individuals) + 2)
		if err != nil {
			return err
		}
		lastCol, err := excelize.ColumnNumberToName(len(individuals) + 1)
		if err != nil {
			return err
		}
		totalCell := fmt.Sprintf("%s%d", totalCol, r)
		if err := f.SetCellFormula(SheetName, totalCell, fmt.Sprintf("SUM(B%d:%s%d)", r, lastCol, r)); err != nil {
			return err
		}
	}

	lastProvider := firstProvider + len(day.Providers) - 1
	totalsRow := lastProvider + 1
	pendingRow := totalsRow + 1
	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", totalsRow), "Totals"); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", pendingRow), "Pending"); err != nil {
		return err
	}
	for j := range individuals {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return err
		}
		sum := fmt.Sprintf("SUM(%s%d:%s%d)", col, firstProvider, col, lastProvider)
		if err := f.SetCellFormula(SheetName, fmt.Sprintf("%s%d", col, totalsRow), sum); err != nil {
			return err
		}
		pending := fmt.Sprintf("%v-%s%d", w.catalog.DailyTarget, col, totalsRow)
		if err := f.SetCellFormula(SheetName, fmt.Sprintf("%s%d", col, pendingRow), pending); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeSummary(f *excelize.File, styles cellStyles, records []changelog.Record) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	headers := []string{"Day", "Provider", "Individual", "Field", "Old", "New", "Reason", "Category"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.bold); err != nil {
			return err
		}
	}
	for i, rec := range records {
		values := []any{rec.Day, rec.Provider, rec.Individual, rec.Field, rec.Old, rec.New, string(rec.Reason), string(rec.Category)}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// indexRecords reduces the chronological change log to per-cell categories
// (last record wins), the set of introduced provider names, and the
// unbalanced days.
func indexRecords(records []changelog.Record) (map[string]changelog.Category, map[string]bool, map[string]bool) {
	cellCat := make(map[string]changelog.Category)
	newNames := make(map[string]bool)
	unbalanced := make(map[string]bool)
	for _, rec := range records {
		switch rec.Category {
		case changelog.CategoryUnbalancedDay:
			unbalanced[rec.Day] = true
		case changelog.CategoryNewProvider:
			newNames[rec.Day+"|"+rec.Provider] = true
		default:
			if rec.Field == "hours" {
				cellCat[rec.Day+"|"+rec.Provider+"|"+rec.Individual] = rec.Category
			}
		}
	}
	return cellCat, newNames, unbalanced
}

package xlsx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carehours/carebalance/core/logger"
	"github.com/carehours/carebalance/core/model"
)

// SheetName is the worksheet the parser prefers. When absent the first sheet
// is used.
const SheetName = "DailyMatrix"

var datePatterns = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"01-02-2006",
}

var dateRe = regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{2,4}$`)

// Parser extracts per-day schedule tables from a workbook. The individual set
// is discovered from the header row, not fixed in code.
type Parser struct {
	log logger.Logger
}

// NewParser returns a parser logging through the given logger.
func NewParser(log logger.Logger) *Parser {
	return &Parser{log: log}
}

// ParseResult is the consolidated dataset handed to the orchestrator.
type ParseResult struct {
	Days        []*model.ScheduleDay
	Individuals []string
}

// ParseFile opens the workbook at path and extracts its day blocks.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.parse(f)
}

func (p *Parser) parse(f *excelize.File) (*ParseResult, error) {
	sheet := SheetName
	list := f.GetSheetList()
	if len(list) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	found := false
	for _, s := range list {
		if s == sheet {
			found = true
			break
		}
	}
	if !found {
		sheet = list[0]
		p.log.Warnf("sheet %q not found, using %q", SheetName, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	individuals, headerIdx := findHeader(rows)
	if len(individuals) == 0 {
		return nil, fmt.Errorf("sheet %s: no header row with individual columns", sheet)
	}
	p.log.Infof("discovered individuals %v from header row %d", individuals, headerIdx+1)

	var days []*model.ScheduleDay
	var current *model.ScheduleDay
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmpty(row) {
			continue
		}
		if date, ok := parseDate(cell(row, 0)); ok {
			current = &model.ScheduleDay{
				Date:        date,
				Individuals: append([]string(nil), individuals...),
			}
			days = append(days, current)
			continue
		}
		name := strings.TrimSpace(cell(row, 0))
		if current == nil || name == "" {
			continue
		}
		if isTotalsRow(name) || isPendingRow(name) {
			continue
		}
		entry := &model.ProviderEntry{Name: name, Hours: make(map[string]float64, len(individuals))}
		for j, ind := range individuals {
			entry.Hours[ind] = parseHours(cell(row, j+1))
		}
		current.Providers = append(current.Providers, entry)
	}

	p.log.Infof("parsed %d day blocks from sheet %s", len(days), sheet)
	return &ParseResult{Days: days, Individuals: individuals}, nil
}

// findHeader locates the "Service Provider" header row and returns the
// individual column names between it and the totals column.
func findHeader(rows [][]string) ([]string, int) {
	limit := len(rows)
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		first := strings.ToUpper(strings.TrimSpace(cell(rows[i], 0)))
		if !strings.Contains(first, "PROVIDER") && !strings.Contains(first, "NAME") {
			continue
		}
		var individuals []string
		for j := 1; j < len(rows[i]); j++ {
			v := strings.TrimSpace(rows[i][j])
			if v == "" {
				continue
			}
			if strings.Contains(strings.ToUpper(v), "TOTAL") {
				break
			}
			individuals = append(individuals, v)
		}
		if len(individuals) > 0 {
			return individuals, i
		}
	}
	return nil, -1
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isTotalsRow(name string) bool {
	up := strings.ToUpper(strings.TrimSpace(name))
	return up == "TOTALS" || up == "TOTAL"
}

func isPendingRow(name string) bool {
	up := strings.ToUpper(strings.TrimSpace(name))
	return up == "PENDING" || up == "PEND"
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" || !dateRe.MatchString(v) {
		return time.Time{}, false
	}
	for _, layout := range datePatterns {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHours coerces a cell to hours. Non-numeric cells count as zero, the
// same way the source workbooks treat blanks and stray text.
func parseHours(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	h, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return h
}

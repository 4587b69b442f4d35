package french

import (
	"strconv"
	"strings"

	"panelcli/internal/config"
	"panelcli/internal/dataset"
	"panelcli/internal/errors"
	"panelcli/internal/timeutil"
)

// factorNames maps the library's column headers to the standardized panel
// column names.
var factorNames = map[string]string{
	"mkt-rf": config.ColMktRF,
	"smb":    config.ColSMB,
	"hml":    config.ColHML,
	"rf":     config.ColRF,
	"mom":    config.ColMom,
	"rmw":    config.ColRMW,
	"cma":    config.ColCMA,
}

// ParseMonthly extracts the monthly section of a French library CSV.
//
// The files open with a free-text preamble; the data header is the first
// line naming a known factor. Monthly rows follow, keyed YYYYMM, until a
// blank line or a bare 4-digit year marks the start of the annual section.
func ParseMonthly(content string) (*dataset.Table, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	headerIdx := -1
	var cols []string
	for i, line := range lines {
		if cols = headerColumns(line); cols != nil {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, errors.SchemaMismatch("no factor header found in french csv")
	}

	table := dataset.New(cols...)
	for _, line := range lines[headerIdx+1:] {
		fields := splitFields(line)
		if len(fields) == 0 {
			break
		}
		key := fields[0]
		if len(key) == 4 && isDigits(key) {
			// Annual section begins.
			break
		}
		if len(key) != 6 || !isDigits(key) {
			continue
		}
		date, err := timeutil.ParseYearMonth(key)
		if err != nil {
			continue
		}

		cells := make([]dataset.Cell, len(cols))
		for j := range cols {
			cells[j] = parseFactorValue(fields, j+1)
		}
		if err := table.Upsert(date, cells...); err != nil {
			return nil, err
		}
	}

	if table.NumRows() == 0 {
		return nil, errors.EmptyDataset("french monthly section")
	}
	return table, nil
}

// headerColumns interprets a line as the data header, returning the
// standardized column names, or nil when the line names no known factor.
// The date column is the unnamed leading field.
func headerColumns(line string) []string {
	fields := strings.Split(line, ",")
	var cols []string
	known := 0
	for i, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f))
		if i == 0 && name == "" {
			continue
		}
		if std, ok := factorNames[name]; ok {
			cols = append(cols, std)
			known++
		} else if name != "" {
			// Unrecognized factor columns keep their cleaned source name.
			cols = append(cols, strings.ReplaceAll(name, " ", "_"))
		}
	}
	if known == 0 {
		return nil
	}
	return cols
}

// parseFactorValue reads one return value in percent. The library marks
// missing observations with -99.99 or -999.
func parseFactorValue(fields []string, idx int) dataset.Cell {
	if idx >= len(fields) {
		return dataset.Empty
	}
	s := strings.TrimSpace(fields[idx])
	if s == "" {
		return dataset.Empty
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return dataset.Empty
	}
	if v == -99.99 || v == -999 {
		return dataset.Empty
	}
	return dataset.Float(v)
}

func splitFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

package artifact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "OCR"

// pageBreakRow separates pages in the generated sheet.
var pageBreakRow = []string{"--- Page Break ---"}

var columnSplit = regexp.MustCompile(`\s{2,}`)

// BuildXlsx creates a simple workbook by splitting each non-empty line on
// runs of two or more spaces. Rows are padded to the widest row; a
// placeholder row is emitted if no page carries data.
func BuildXlsx(pages []string) ([]byte, error) {
	var rows [][]string
	maxCols := 0
	for _, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			cells := splitTableLine(line)
			rows = append(rows, cells)
			if len(cells) > maxCols {
				maxCols = len(cells)
			}
		}
		if len(rows) > 0 {
			rows = append(rows, pageBreakRow)
		}
	}

	// Drop the trailing page break, then fall back to a placeholder when the
	// input held no usable lines at all.
	if len(rows) > 0 && len(rows[len(rows)-1]) == 1 && rows[len(rows)-1][0] == pageBreakRow[0] {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"No data"})
	}
	if maxCols < 1 {
		maxCols = 1
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, maxCols)
	for i := range header {
		header[i] = fmt.Sprintf("Column %d", i+1)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		padded := make([]any, maxCols)
		for j := range padded {
			if j < len(row) {
				padded[j] = row[j]
			} else {
				padded[j] = ""
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &padded); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func splitTableLine(line string) []string {
	var columns []string
	for _, col := range columnSplit.Split(line, -1) {
		if trimmed := strings.TrimSpace(col); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	if len(columns) == 0 {
		columns = []string{strings.TrimSpace(line)}
	}
	return columns
}

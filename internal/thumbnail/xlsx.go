package thumbnail

import (
	"bytes"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
)

// A preview only ever shows the top-left corner of the first sheet.
const (
	xlsxMaxRows = 30
	xlsxMaxCols = 20
)

// extractXlsxText reads at most the first 30 rows x 20 columns of the first
// sheet, joining cell values with a tab per row. Shared-string references are
// resolved by excelize.
func extractXlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("xlsx: workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var b strings.Builder
	for i := 0; i < xlsxMaxRows && rows.Next(); i++ {
		cells, err := rows.Columns()
		if err != nil {
			return "", err
		}
		if len(cells) > xlsxMaxCols {
			cells = cells[:xlsxMaxCols]
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

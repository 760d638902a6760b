package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is the cell grid of one worksheet with blank rows removed.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadSheet opens a workbook and returns the preferred sheet (case-insensitive)
// or the first sheet when it is absent.
func ReadSheet(r io.Reader, preferred string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if preferred != "" {
		for _, s := range f.GetSheetList() {
			if strings.EqualFold(strings.TrimSpace(s), preferred) {
				name = s
				break
			}
		}
	}
	if name == "" {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	sheet := &Sheet{Name: name}
	for _, row := range rows {
		if isBlankRecord(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return sheet, nil
}

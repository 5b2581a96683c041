package workload

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// ReadXLSX reads the first sheet of an Excel workbook. The sheet follows
// the CSV rules: an optional header row, then one process per row.
func ReadXLSX(r io.Reader, opts Options) ([]types.Process, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading workbook: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []types.Process{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrInvalidInput, sheets[0], err)
	}
	return parseRows(rows, nil, opts)
}

package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook opens an .xlsx file and returns the classified rows of the
// named sheet, or of the first sheet when name is empty. Values are read raw
// so number formats in the workbook cannot change the classification.
func ReadWorkbook(path, name string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if name == "" {
		name = f.GetSheetName(0)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return ClassifyRows(raw), nil
}

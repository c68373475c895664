package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

// WriteExcel writes the rows as a single-sheet workbook with a bold,
// frozen header row.
func WriteExcel(w io.Writer, rows []Row) error {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(sheetName)
	if err != nil {
		return err
	}
	file.SetActiveSheet(index)
	file.DeleteSheet("Sheet1")

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheetName, cell, title); err != nil {
			return err
		}
		if err := file.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	if err := file.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID, row.Source, row.Type, row.Amount, row.Currency, row.Status,
			row.CreatedAt.Format(time.RFC3339), row.CauseName, row.Counterparty, row.TxHash,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	return file.Write(w)
}

// Package export serializes the transaction log to a spreadsheet. The column
// order is a contract consumers rely on; do not reorder.
package export

import (
	"bytes"
	"fmt"
	"go-bank-ledger/model"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

// Columns is the exported header row, in contract order.
var Columns = []string{"Transaction ID", "Sender Account", "Receiver Account", "Amount", "Description", "Date"}

// TransactionsToExcel renders the transactions into an XLSX workbook held in
// memory. Rows keep the order they were given in.
func TransactionsToExcel(transactions []*model.Transaction) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, column := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, column); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, t := range transactions {
		row := i + 2
		values := []interface{}{
			t.ID,
			t.SenderAccountNumber,
			t.ReceiverAccountNumber,
			t.Amount.StringFixed(2),
			t.Description,
			t.TransactionTime.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

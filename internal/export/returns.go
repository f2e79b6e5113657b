// Package export renders return listings as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"

	"go-retail-pos/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

// PurchaseReturns writes one row per return under a header row.
func PurchaseReturns(returns []model.PurchaseReturn) ([]byte, error) {
	header := []interface{}{"Return Number", "Return Date", "Supplier", "Items", "Subtotal", "Tax", "Total", "Status", "Reason"}
	rows := make([][]interface{}, 0, len(returns))
	for _, r := range returns {
		supplier := ""
		if r.Supplier != nil {
			supplier = r.Supplier.Name
		}
		rows = append(rows, []interface{}{
			r.ReturnNumber,
			r.ReturnDate.Format(dateLayout),
			supplier,
			len(r.Items),
			r.Subtotal.InexactFloat64(),
			r.TaxAmount.InexactFloat64(),
			r.Total.InexactFloat64(),
			r.Status,
			r.Reason,
		})
	}
	return workbook("Purchase Returns", header, rows)
}

func SalesReturns(returns []model.SalesReturn) ([]byte, error) {
	header := []interface{}{"Return Number", "Return Date", "Customer", "Branch", "Items", "Subtotal", "Tax", "Total", "Status", "Reason"}
	rows := make([][]interface{}, 0, len(returns))
	for _, r := range returns {
		customer, branch := "", ""
		if r.Customer != nil {
			customer = r.Customer.Name
		}
		if r.Branch != nil {
			branch = r.Branch.Name
		}
		rows = append(rows, []interface{}{
			r.ReturnNumber,
			r.ReturnDate.Format(dateLayout),
			customer,
			branch,
			len(r.Items),
			r.Subtotal.InexactFloat64(),
			r.TaxAmount.InexactFloat64(),
			r.Total.InexactFloat64(),
			r.Status,
			r.Reason,
		})
	}
	return workbook("Sales Returns", header, rows)
}

func workbook(sheetName string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = sheetName

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

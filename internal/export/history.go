package export

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	sheets "google.golang.org/api/sheets/v4"
)

// HistorySheet receives one row per exported report.
const HistorySheet = "HISTORY"

var historyHeader = []any{
	"Date", "User", "Total invested", "Total value", "Total profit",
	"Profit rate", "Annual dividend", "Monthly dividend", "Skipped records",
}

var monthsPerYear = decimal.NewFromInt(12)

// historyRow renders the summary line appended to the history sheet.
func historyRow(r Report) []any {
	s := r.Summary
	return []any{
		r.AsOf.UTC().Format("2006-01-02"),
		r.UserID,
		toFloat(s.TotalInvested),
		toFloat(s.TotalValue),
		toFloat(s.TotalProfit),
		toFloat(s.ProfitRate),
		toFloat(s.MonthlyDividend.Mul(monthsPerYear)),
		toFloat(s.MonthlyDividend),
		float64(r.Skipped),
	}
}

// AppendHistory ensures the history sheet exists, writes its header when the
// sheet is empty, then appends one row for the report.
func (w *SheetsWriter) AppendHistory(ctx context.Context, r Report) error {
	meta, err := w.ensureSheets(ctx, HistorySheet)
	if err != nil {
		return fmt.Errorf("ensuring %s sheet: %w", HistorySheet, err)
	}

	existing, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, a1(HistorySheet, "A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", HistorySheet, err)
	}

	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			a1(HistorySheet, "A1"),
			&sheets.ValueRange{Values: [][]any{historyHeader}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing %s header: %w", HistorySheet, err)
		}
		if err := w.formatHistory(ctx, meta[HistorySheet]); err != nil {
			return fmt.Errorf("formatting %s sheet: %w", HistorySheet, err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		a1(HistorySheet, "A:I"),
		&sheets.ValueRange{Values: [][]any{historyRow(r)}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s row: %w", HistorySheet, err)
	}
	return nil
}

// historyMoneyCols lists 0-based columns formatted as #,##0.00.
var historyMoneyCols = []int64{2, 3, 4, 6, 7}

// formatHistory bolds and freezes the header row and applies number formats.
func (w *SheetsWriter) formatHistory(ctx context.Context, sheet sheetMeta) error {
	lightGreen := &sheets.Color{Red: 0.851, Green: 0.918, Blue: 0.827}
	totalCols := int64(len(historyHeader))

	reqs := []*sheets.Request{
		cellFormatReq(sheet.id, 0, 1, 0, totalCols,
			&sheets.CellFormat{
				BackgroundColor:     lightGreen,
				TextFormat:          &sheets.TextFormat{Bold: true},
				HorizontalAlignment: "CENTER",
			},
			"userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)"),
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheet.id,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		cellFormatReq(sheet.id, 1, 10000, 5, 6,
			&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "PERCENT", Pattern: "0.00%"}},
			"userEnteredFormat.numberFormat"),
	}
	for _, col := range historyMoneyCols {
		reqs = append(reqs, cellFormatReq(sheet.id, 1, 10000, col, col+1,
			&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0.00"}},
			"userEnteredFormat.numberFormat"))
	}

	_, err := w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: reqs},
	).Context(ctx).Do()
	return err
}

func cellFormatReq(sheetID, startRow, endRow, startCol, endCol int64, format *sheets.CellFormat, fields string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		},
	}
}

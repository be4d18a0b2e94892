package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var settlementColumns = []string{"Fecha", "Saldo anterior", "Abonos", "Entradas", "Préstamos", "Salidas", "Gastos", "Saldo"}

type ExportService struct {
	settlementSvc *SettlementService
}

func NewExportService(settlementSvc *SettlementService) *ExportService {
	return &ExportService{settlementSvc: settlementSvc}
}

// Export is a rendered file ready to download
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Settlements renders the settlements between from and to in the requested format.
func (s *ExportService) Settlements(ctx context.Context, from, to string, format string) (*Export, error) {
	rng, err := s.settlementRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV, "":
		return s.SettlementsCSV(rng)
	case FormatXLSX:
		return s.SettlementsXLSX(rng)
	case FormatPDF:
		return s.SettlementsPDF(rng)
	}
	return nil, invalid("Formato no soportado: %s", format)
}

func (s *ExportService) settlementRange(ctx context.Context, from, to string) (*SettlementRange, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = localday.Parse(from); err != nil {
			return nil, invalid("%s", err.Error())
		}
	}
	if to != "" {
		if end, err = localday.Parse(to); err != nil {
			return nil, invalid("%s", err.Error())
		}
	}
	return s.settlementSvc.Range(ctx, start, end)
}

func settlementRow(st models.DailySettlement) []string {
	return []string{
		localday.Format(st.Date),
		st.PreviousBalance.StringFixed(2),
		st.Payments.StringFixed(2),
		st.Inflows.StringFixed(2),
		st.Loans.StringFixed(2),
		st.Outflows.StringFixed(2),
		st.Expenses.StringFixed(2),
		st.Balance.StringFixed(2),
	}
}

func totalsRow(rng *SettlementRange) []string {
	t := rng.Totals
	return []string{
		"Totales",
		"",
		t.Payments.StringFixed(2),
		t.Inflows.StringFixed(2),
		t.Loans.StringFixed(2),
		t.Outflows.StringFixed(2),
		t.Expenses.StringFixed(2),
		rng.Closing.StringFixed(2),
	}
}

func exportName(rng *SettlementRange, ext string) string {
	return fmt.Sprintf("liquidaciones_%s_%s.%s", localday.Format(rng.From), localday.Format(rng.To), ext)
}

func (s *ExportService) SettlementsCSV(rng *SettlementRange) (*Export, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(settlementColumns)
	for _, st := range rng.Settlements {
		_ = writer.Write(settlementRow(st))
	}
	_ = writer.Write(totalsRow(rng))

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return &Export{Data: buf.Bytes(), Filename: exportName(rng, FormatCSV), ContentType: "text/csv"}, nil
}

func (s *ExportService) SettlementsXLSX(rng *SettlementRange) (*Export, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Liquidaciones"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	for i, col := range settlementColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	_ = f.SetCellStyle(sheet, "A1", "H1", headerStyle)

	writeMoney := func(row, col int, values ...decimal.Decimal) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+i, row)
			_ = f.SetCellValue(sheet, cell, v.InexactFloat64())
		}
	}

	row := 2
	for _, st := range rng.Settlements {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), localday.Format(st.Date))
		writeMoney(row, 2, st.PreviousBalance, st.Payments, st.Inflows, st.Loans, st.Outflows, st.Expenses, st.Balance)
		row++
	}

	t := rng.Totals
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Totales")
	writeMoney(row, 3, t.Payments, t.Inflows, t.Loans, t.Outflows, t.Expenses, rng.Closing)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), headerStyle)
	_ = f.SetCellStyle(sheet, "B2", fmt.Sprintf("H%d", row-1), moneyStyle)
	_ = f.SetColWidth(sheet, "A", "H", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return &Export{
		Data:        buf.Bytes(),
		Filename:    exportName(rng, FormatXLSX),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

func (s *ExportService) SettlementsPDF(rng *SettlementRange) (*Export, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Liquidaciones diarias"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 8, fmt.Sprintf("Desde %s hasta %s", localday.Format(rng.From), localday.Format(rng.To)))
	pdf.Ln(10)

	widths := []float64{30, 34, 32, 32, 32, 32, 32, 34}
	writeRow := func(cells []string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 9)
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, align, bold, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFillColor(224, 224, 224)
	writeRow(settlementColumns, true)
	for _, st := range rng.Settlements {
		writeRow(settlementRow(st), false)
	}
	writeRow(totalsRow(rng), true)

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Saldo de cierre: %s (%s)", rng.Closing.StringFixed(2), AmountInWords(rng.Closing))))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return &Export{Data: buf.Bytes(), Filename: exportName(rng, FormatPDF), ContentType: "application/pdf"}, nil
}

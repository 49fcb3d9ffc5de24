package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"fintrack/ledger"
	"fintrack/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHeaders 导出表头
var ExportHeaders = []string{"ID", "Data", "Tipo", "Carteira", "Categoria", "Descrição", "Valor"}

// ExportRow 导出的一行交易
type ExportRow struct {
	ID          uint
	Date        time.Time
	Type        string
	Wallet      string
	Category    *string
	Description string
	Amount      decimal.Decimal
}

func (r ExportRow) typeLabel() string {
	if r.Type == ledger.TypeIncome {
		return "Receita"
	}
	return "Despesa"
}

func (r ExportRow) categoryLabel() string {
	if r.Category == nil || *r.Category == "" {
		return ledger.UncategorizedLabel
	}
	return *r.Category
}

// ExportRows 查询区间内未归档的交易（含转账），按日期升序
func ExportRows(ctx context.Context, db *gorm.DB, userID uint, start, end time.Time) ([]ExportRow, error) {
	var rows []ExportRow
	err := db.WithContext(ctx).Model(&models.Transaction{}).
		Select("transactions.id, transactions.date, transactions.type, wallets.name AS wallet, categories.name AS category, transactions.description, transactions.amount").
		Joins("JOIN wallets ON wallets.id = transactions.wallet_id").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.is_archived = ?", userID, false).
		Where("transactions.date >= ? AND transactions.date <= ?", ledger.DayKey(start), ledger.DayKey(end)).
		Order("transactions.date ASC, transactions.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询导出数据失败: %w", err)
	}
	return rows, nil
}

// WriteCSV 写入 CSV，带 BOM 以便 Excel 正确识别 UTF-8
func WriteCSV(w io.Writer, rows []ExportRow) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			fmt.Sprintf("%d", r.ID),
			r.Date.Format("2006-01-02"),
			r.typeLabel(),
			r.Wallet,
			r.categoryLabel(),
			r.Description,
			ledger.Money(ledger.SignedAmount(r.Type, r.Amount)),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX 写入 Excel 工作簿，末行为合计
func WriteXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Transações"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border: border,
	})

	widths := map[string]float64{"A": 8, "B": 12, "C": 10, "D": 20, "E": 20, "F": 40, "G": 14}
	for col, width := range widths {
		_ = f.SetColWidth(sheetName, col, col, width)
	}

	for i, header := range ExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	total := decimal.Zero
	for i, r := range rows {
		row := i + 2
		signed := ledger.SignedAmount(r.Type, r.Amount)
		value, _ := signed.Float64()
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.typeLabel())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Wallet)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.categoryLabel())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Description)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), value)
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
		total = total.Add(signed)
	}

	summaryRow := len(rows) + 2
	totalValue, _ := total.Float64()
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Total")
	_ = f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", summaryRow), totalValue)
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("G%d", summaryRow), summaryStyle)

	return f.Write(w)
}

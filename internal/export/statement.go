package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"maskan/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TransactionLister is the slice of the store the exporter needs.
type TransactionLister interface {
	ListUserTransactions(ctx context.Context, userID int64, from, to time.Time) ([]*models.Transaction, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// StatementExporter пишет выписку по счету пользователя в Excel файл.
type StatementExporter struct {
	store  TransactionLister
	path   string
	logger *zerolog.Logger
}

func NewStatementExporter(store TransactionLister, path string, logger *zerolog.Logger) *StatementExporter {
	if path == "" {
		path = "exports"
	}
	return &StatementExporter{store: store, path: path, logger: logger}
}

var statementHeaders = []string{"Дата", "Тип", "Сумма", "Бронирование", "Контрагент", "Комментарий"}

// ExportStatement создает Excel файл с операциями пользователя за период
// и возвращает путь к файлу.
func (e *StatementExporter) ExportStatement(ctx context.Context, userID int64, from, to time.Time) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error getting user: %w", err)
	}

	txns, err := e.store.ListUserTransactions(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("error getting transactions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Выписка"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	title := fmt.Sprintf("Выписка: %s %s", user.FirstName, user.LastName)
	if !from.IsZero() || !to.IsZero() {
		title += fmt.Sprintf(" (%s - %s)", formatPeriodDate(from), formatPeriodDate(to))
	}
	_ = f.SetCellValue(sheetName, "A1", title)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, header := range statementHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	total := decimal.Zero
	row := 3
	for _, txn := range txns {
		writeStatementRow(f, sheetName, row, txn)
		total = total.Add(txn.Amount)
		row++
	}

	// Итоговая строка: сумма операций за период
	totalCell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellValue(sheetName, totalCell, "Итого")
	sumCell, _ := excelize.CoordinatesToCellName(3, row)
	_ = f.SetCellValue(sheetName, sumCell, total.StringFixed(2))
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, totalCell, sumCell, boldStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "B", "F", 18)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(sheetName, "A1", "F1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("statement_%d_%s.xlsx", userID, time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int64("user_id", userID).Int("transactions", len(txns)).Msg("statement exported")
	return filePath, nil
}

func writeStatementRow(f *excelize.File, sheetName string, row int, txn *models.Transaction) {
	values := []interface{}{
		txn.CreatedAt.Format("02.01.2006 15:04"),
		txnTypeLabel(txn.Type),
		txn.Amount.StringFixed(2),
		"",
		"",
		txn.Description,
	}
	if txn.RelatedBookingID != 0 {
		values[3] = fmt.Sprintf("#%d", txn.RelatedBookingID)
	}
	if txn.RelatedUserID != 0 {
		values[4] = fmt.Sprintf("#%d", txn.RelatedUserID)
	}
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}

func txnTypeLabel(txType string) string {
	switch txType {
	case models.TxDeposit:
		return "Пополнение"
	case models.TxWithdrawal:
		return "Вывод"
	case models.TxRentPayment:
		return "Оплата аренды"
	case models.TxRefund:
		return "Возврат"
	case models.TxCancellationFee:
		return "Комиссия за отмену"
	default:
		return txType
	}
}

func formatPeriodDate(d time.Time) string {
	if d.IsZero() {
		return "…"
	}
	return d.Format("02.01.2006")
}

package service

import (
	"context"
	"fmt"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportService renders finance exports as xlsx workbooks.
type ReportService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewReportService(db *gorm.DB, logger *zap.Logger) *ReportService {
	return &ReportService{db: db, logger: logger}
}

// ExportInvoices builds a workbook with one invoice per row and a second
// sheet listing every payment. Filters narrow by status or tracking id.
func (s *ReportService) ExportInvoices(ctx context.Context, filters map[string]string) (*excelize.File, error) {
	query := s.db.WithContext(ctx).Model(&entity.Invoice{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if trackingID := filters["tracking_id"]; trackingID != "" {
		query = query.Where("tracking_id = ?", trackingID)
	}

	var invoices []entity.Invoice
	if err := query.Order("created_at ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const invoiceSheet = "Invoices"
	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	headers := []string{"Invoice No", "Status", "Tracking ID", "Subtotal", "Tax Rate", "Tax", "Total", "Paid", "Remaining", "Currency"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(invoiceSheet, cell, h); err != nil {
			return nil, err
		}
	}
	invoiceIDs := make([]string, 0, len(invoices))
	for row, inv := range invoices {
		invoiceIDs = append(invoiceIDs, inv.ID)
		values := []interface{}{
			inv.InvoiceNumber, string(inv.Status), inv.TrackingID,
			inv.Subtotal, inv.TaxRate, inv.TaxAmount,
			inv.TotalAmount, inv.PaidAmount, inv.RemainingAmount, inv.Currency,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(invoiceSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	const paymentSheet = "Payments"
	if _, err := f.NewSheet(paymentSheet); err != nil {
		return nil, err
	}
	paymentHeaders := []string{"Payment No", "Invoice ID", "Status", "Amount", "Method", "Reference", "Tracking ID"}
	for i, h := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(paymentSheet, cell, h); err != nil {
			return nil, err
		}
	}
	if len(invoiceIDs) > 0 {
		var payments []entity.Payment
		err := s.db.WithContext(ctx).
			Where("invoice_id IN ?", invoiceIDs).
			Order("created_at ASC").
			Find(&payments).Error
		if err != nil {
			return nil, err
		}
		for row, p := range payments {
			values := []interface{}{
				p.PaymentNumber, p.InvoiceID, string(p.Status),
				p.Amount, p.Method, p.TransactionReference, p.TrackingID,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				if err := f.SetCellValue(paymentSheet, cell, v); err != nil {
					return nil, err
				}
			}
		}
	}

	s.logger.Info("invoice export built",
		zap.Int("invoices", len(invoices)))
	return f, nil
}

// ExportFileName names a finance export with the current date.
func ExportFileName(prefix string, year, month, day int) string {
	return fmt.Sprintf("%s_%04d%02d%02d.xlsx", prefix, year, month, day)
}

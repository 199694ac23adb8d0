package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/internal/app/repository"
	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var ErrInvalidReportRange = errors.New("report range must end after it starts")

const (
	checkoutSheet      = "Checkouts"
	outcomeSheet       = "Outcomes"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportLinkTTL      = 24 * time.Hour
	maxReportRangeDays = 93
)

// ReportUploader stores a finished report and signs a download link.
type ReportUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Report struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ReportService interface {
	// ExportCheckouts writes the ledger for [from, to) to xlsx and returns a signed link.
	ExportCheckouts(ctx context.Context, from, to time.Time) (*Report, error)
}

type reportService struct {
	ledger   repository.CheckoutRepository
	uploader ReportUploader
	now      func() time.Time
}

func NewReportService(ledger repository.CheckoutRepository, uploader ReportUploader) ReportService {
	return &reportService{ledger: ledger, uploader: uploader, now: time.Now}
}

func (s *reportService) ExportCheckouts(ctx context.Context, from, to time.Time) (*Report, error) {
	if !to.After(from) || to.Sub(from) > maxReportRangeDays*24*time.Hour {
		return nil, ErrInvalidReportRange
	}

	logger.Info("Exporting checkout report", map[string]interface{}{
		"from": from,
		"to":   to,
	})

	records, err := s.ledger.FindBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("load checkout ledger: %w", err)
	}

	f, err := buildCheckoutWorkbook(records)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	key := fmt.Sprintf("reports/checkouts/%s_%s_%d.xlsx",
		from.UTC().Format("20060102"), to.UTC().Format("20060102"), s.now().Unix())
	if err := s.uploader.Upload(ctx, key, xlsxContentType, buf); err != nil {
		logger.Error("Failed to upload checkout report", err, map[string]interface{}{
			"key": key,
		})
		return nil, fmt.Errorf("upload report: %w", err)
	}

	url, err := s.uploader.PresignGet(ctx, key, reportLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("sign report link: %w", err)
	}

	logger.Info("Checkout report exported", map[string]interface{}{
		"key":  key,
		"rows": len(records),
	})

	return &Report{
		Key:       key,
		URL:       url,
		Rows:      len(records),
		From:      from,
		To:        to,
		ExpiresAt: s.now().Add(reportLinkTTL),
	}, nil
}

func buildCheckoutWorkbook(records []model.CheckoutRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", checkoutSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(outcomeSheet); err != nil {
		return nil, err
	}

	checkoutHeader := []interface{}{"Checkout ID", "User ID", "Checked Out At", "Payment", "Address", "Phone", "Postal Code", "Sellers", "Failed Sellers", "Total"}
	outcomeHeader := []interface{}{"Checkout ID", "Seller ID", "Seller Name", "Order ID", "Subtotal", "Succeeded", "Cart Cleared", "Error"}
	if err := f.SetSheetRow(checkoutSheet, "A1", &checkoutHeader); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(outcomeSheet, "A1", &outcomeHeader); err != nil {
		return nil, err
	}

	outcomeRow := 2
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.CheckoutID,
			r.UserID,
			r.CheckedOutAt.UTC().Format(time.RFC3339),
			string(r.PaymentMethod),
			r.Address,
			r.Phone,
			r.PostalCode,
			r.SellerCount,
			strings.Join(r.FailedSellerIDs, ", "),
			r.TotalPrice,
		}
		if err := f.SetSheetRow(checkoutSheet, cell, &row); err != nil {
			return nil, err
		}

		for _, o := range r.Outcomes {
			cell, _ := excelize.CoordinatesToCellName(1, outcomeRow)
			row := []interface{}{r.CheckoutID, o.SellerID, o.SellerName, o.OrderID, o.Subtotal, o.Succeeded, o.CartCleared, o.Error}
			if err := f.SetSheetRow(outcomeSheet, cell, &row); err != nil {
				return nil, err
			}
			outcomeRow++
		}
	}
	return f, nil
}

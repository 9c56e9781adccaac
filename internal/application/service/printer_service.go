package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer  printer.Printer
	bills    repository.BillRepository
	settings *ReportSettingsService
	clock    *clock.Clock
	width    int
	log      logrus.FieldLogger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	bills repository.BillRepository,
	settings *ReportSettingsService,
	clk *clock.Clock,
	width int,
	log logrus.FieldLogger,
) *PrinterService {
	return &PrinterService{
		printer:  p,
		bills:    bills,
		settings: settings,
		clock:    clk,
		width:    width,
		log:      log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Kind() != printer.KindNone,
		Connected:  s.printer.Online(ctx),
		Type:       string(s.printer.Kind()),
	}
}

// TestPrint sends a sample receipt. The receipt is returned even when the
// printer fails so the caller can show it.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	header, err := s.header(ctx)
	if err != nil {
		return nil, err
	}

	receipt := &entity.Receipt{
		Header:        header,
		TokenNumber:   1,
		BillNumber:    "TEST-001",
		Date:          s.clock.NowLocal().Format("2006-01-02 15:04"),
		Platform:      entity.DefaultPlatform,
		PaymentMethod: "Cash",
		Lines: []entity.ReceiptLine{
			{Name: "Test Item 1", Quantity: 1, Price: decimal.NewFromInt(10), Total: decimal.NewFromInt(10)},
			{Name: "Test Item 2", Quantity: 2, Price: decimal.NewFromInt(5), Total: decimal.NewFromInt(10)},
		},
		Subtotal: decimal.NewFromInt(20),
		Total:    decimal.NewFromInt(20),
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintBillReceipt prints one of the owner's bills
func (s *PrinterService) PrintBillReceipt(ctx context.Context, ownerID, billID uuid.UUID) (*entity.Receipt, error) {
	bill, err := s.bills.GetByID(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	header, err := s.header(ctx)
	if err != nil {
		return nil, err
	}
	receipt := BuildReceipt(header, bill, s.clock)

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		s.log.WithError(err).WithField("bill_number", bill.BillNumber).Error("printer error")
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

func (s *PrinterService) header(ctx context.Context) (entity.ReceiptHeader, error) {
	general, err := s.settings.GetGeneralSettings(ctx)
	if err != nil {
		return entity.ReceiptHeader{}, err
	}
	return entity.ReceiptHeader{
		RestaurantName: general.RestaurantName,
		Address:        general.RestaurantAddress,
		Phone:          general.RestaurantPhone,
	}, nil
}

// BuildReceipt composes a receipt from a stored bill
func BuildReceipt(header entity.ReceiptHeader, bill *entity.Bill, clk *clock.Clock) *entity.Receipt {
	r := &entity.Receipt{
		Header:        header,
		TokenNumber:   bill.TokenNumber,
		BillNumber:    bill.BillNumber,
		Date:          clk.ToLocal(bill.CreatedAt).Format("2006-01-02 15:04"),
		Platform:      bill.Platform,
		PaymentMethod: bill.PaymentMethod,
		Subtotal:      bill.Subtotal,
		GST:           bill.GST,
		ServiceCharge: bill.ServiceCharge,
		Total:         bill.Total,
	}
	if bill.CustomerName != nil {
		r.Customer = *bill.CustomerName
	}
	for _, item := range bill.Items {
		r.Lines = append(r.Lines, entity.ReceiptLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    item.Total,
		})
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	t := printer.NewTicket(width)

	// Header
	t.Align(printer.Center).Bold(true).Large(true).
		Line(r.Header.RestaurantName).
		Large(false).Bold(false)
	if r.Header.Address != "" {
		t.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		t.Line(r.Header.Phone)
	}

	t.Rule().Bold(true).Large(true).
		Line(fmt.Sprintf("TOKEN %d", r.TokenNumber)).
		Large(false).Bold(false)

	t.Align(printer.Left).Rule().
		Columns("Bill:", r.BillNumber).
		Columns("Date:", r.Date).
		Columns("Platform:", r.Platform).
		Columns("Payment:", r.PaymentMethod)
	if r.Customer != "" {
		t.Columns("Customer:", r.Customer)
	}
	t.Rule()

	for _, line := range r.Lines {
		t.Columns(fmt.Sprintf("%dx %s", line.Quantity, line.Name), line.Total.StringFixed(2))
		if line.Quantity > 1 {
			t.Line("  @ " + line.Price.StringFixed(2) + " each")
		}
	}
	t.Rule()

	// Totals
	t.Columns("Subtotal:", r.Subtotal.StringFixed(2))
	if r.GST.IsPositive() {
		t.Columns("GST:", r.GST.StringFixed(2))
	}
	if r.ServiceCharge.IsPositive() {
		t.Columns("Service:", r.ServiceCharge.StringFixed(2))
	}
	t.Bold(true).Columns("TOTAL:", r.Total.StringFixed(2)).Bold(false)

	t.Rule().Align(printer.Center).
		Feed(1).
		Line("Thank you, visit again!").
		Align(printer.Left).
		Cut()

	return t.Bytes()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/enum"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/email"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNoRecipients is returned when a report has nowhere to go
var ErrNoRecipients = errors.New("no report recipients configured")

// Mailer delivers a single email
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// Dispatcher runs one report
type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error)
}

// DispatchRequest describes one report run. Window is in local time.
type DispatchRequest struct {
	Cadence    enum.Cadence
	Category   enum.ReportCategory
	Window     Window
	Recipients string
}

// DispatchResult describes what a report run did
type DispatchResult struct {
	Skipped      bool     `json:"skipped"`
	Files        []string `json:"files,omitempty"`
	Recipients   []string `json:"recipients,omitempty"`
	BillCount    int      `json:"bill_count"`
	ExpenseCount int      `json:"expense_count"`
	Summary      string   `json:"summary,omitempty"`
}

// ReportDispatcherConfig holds report output settings
type ReportDispatcherConfig struct {
	Dir            string
	XLSXEnabled    bool
	CurrencySymbol string
}

// ReportDispatcher loads, renders and mails reports
type ReportDispatcher struct {
	bills    repository.BillRepository
	expenses repository.ExpenseRepository
	mailer   Mailer
	fs       afero.Fs
	clock    *clock.Clock
	config   ReportDispatcherConfig
	log      logrus.FieldLogger
}

// NewReportDispatcher creates a new report dispatcher
func NewReportDispatcher(
	bills repository.BillRepository,
	expenses repository.ExpenseRepository,
	mailer Mailer,
	fs afero.Fs,
	clk *clock.Clock,
	config ReportDispatcherConfig,
	log logrus.FieldLogger,
) *ReportDispatcher {
	return &ReportDispatcher{
		bills:    bills,
		expenses: expenses,
		mailer:   mailer,
		fs:       fs,
		clock:    clk,
		config:   config,
		log:      log,
	}
}

// Dispatch runs the report described by req. A window with no bills and no
// expenses is skipped without writing or sending anything.
func (d *ReportDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if !req.Cadence.IsValid() || !req.Category.IsValid() {
		return nil, fmt.Errorf("invalid report %s_%s", req.Cadence, req.Category)
	}

	start := d.clock.ToAbsolute(req.Window.Start)
	end := d.clock.ToAbsolute(req.Window.End)
	log := d.log.WithFields(logrus.Fields{
		"report": req.Cadence.String() + "_" + req.Category.String(),
		"start":  req.Window.Start.Format(reportTimeLayout),
		"end":    req.Window.End.Format(reportTimeLayout),
	})

	var (
		bills    []entity.Bill
		expenses []entity.Expense
		err      error
	)
	if req.Category.IncludesSales() {
		bills, err = d.bills.ListCreatedBetween(ctx, repository.BillWindowFilter{Start: start, End: end, WithItems: true})
		if err != nil {
			return nil, fmt.Errorf("failed to load bills: %w", err)
		}
	}
	if req.Category.IncludesExpenses() {
		expenses, err = d.expenses.ListDatedBetween(ctx, nil, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load expenses: %w", err)
		}
	}

	result := &DispatchResult{BillCount: len(bills), ExpenseCount: len(expenses)}
	if len(bills) == 0 && len(expenses) == 0 {
		log.Info("no data for report period, skipping")
		result.Skipped = true
		return result, nil
	}

	recipients := ParseRecipients(req.Recipients)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	loc := d.clock.Location()
	attachments := make([]email.Attachment, 0, 2)

	csvData, err := RenderCSV(req.Category, bills, expenses, loc)
	if err != nil {
		return nil, err
	}
	attachments = append(attachments, email.Attachment{
		Filename:    ReportFileName(req.Cadence, req.Category, req.Window, "csv"),
		ContentType: csvContentType,
		Data:        csvData,
	})

	if d.config.XLSXEnabled {
		xlsxData, err := RenderXLSX(req.Category, bills, expenses, loc)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, email.Attachment{
			Filename:    ReportFileName(req.Cadence, req.Category, req.Window, "xlsx"),
			ContentType: xlsxContentType,
			Data:        xlsxData,
		})
	}

	if err := d.fs.MkdirAll(d.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	for _, a := range attachments {
		path := filepath.Join(d.config.Dir, a.Filename)
		if err := afero.WriteFile(d.fs, path, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.Files = append(result.Files, path)
	}

	summary := Summarize(req.Cadence, req.Category, req.Window, bills, expenses)
	result.Summary = summary.Text(d.config.CurrencySymbol)
	subject := fmt.Sprintf("%s %s Report", req.Cadence, req.Category)

	for _, to := range recipients {
		msg := email.Message{To: to, Subject: subject, Body: result.Summary, Attachments: attachments}
		if err := d.mailer.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to deliver %s: %w", subject, err)
		}
		result.Recipients = append(result.Recipients, to)
	}

	log.WithFields(logrus.Fields{
		"bills":      len(bills),
		"expenses":   len(expenses),
		"recipients": len(recipients),
	}).Info("report sent")
	return result, nil
}

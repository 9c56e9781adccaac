package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const reportTimeLayout = "2006-01-02 15:04:05"

var (
	salesHeader   = []string{"BillNumber", "Date", "Platform", "PaymentMethod", "Subtotal", "GST", "ServiceCharge", "Total"}
	expenseHeader = []string{"Date", "Category", "Description", "Vendor", "PaymentMethod", "Amount"}
)

// ReportFileName names a rendered report file
func ReportFileName(cadence enum.Cadence, category enum.ReportCategory, w Window, ext string) string {
	return fmt.Sprintf("%s_%s_Report_%s_%s.%s",
		cadence, category, w.Start.Format("20060102"), w.End.Format("20060102"), ext)
}

func billRow(b *entity.Bill, loc *time.Location) []string {
	return []string{
		b.BillNumber,
		b.CreatedAt.In(loc).Format(reportTimeLayout),
		b.Platform,
		b.PaymentMethod,
		b.Subtotal.StringFixed(2),
		b.GST.StringFixed(2),
		b.ServiceCharge.StringFixed(2),
		b.Total.StringFixed(2),
	}
}

func expenseRow(e *entity.Expense, loc *time.Location) []string {
	return []string{
		e.Date.In(loc).Format(reportTimeLayout),
		e.CategoryName(),
		deref(e.Description),
		deref(e.VendorName),
		e.PaymentMethod,
		e.Amount.StringFixed(2),
	}
}

// RenderCSV renders the sections selected by category. Timestamps are written
// as local wall clock in loc.
func RenderCSV(category enum.ReportCategory, bills []entity.Bill, expenses []entity.Expense, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	blank := []string{""}

	var records [][]string
	if category.IncludesSales() {
		records = append(records, []string{"SALES TRANSACTIONS"}, salesHeader)
		for i := range bills {
			records = append(records, billRow(&bills[i], loc))
		}
		records = append(records, blank,
			[]string{"Total Sales", "", "", sumBills(bills, nil).StringFixed(2)},
			blank)
	}
	if category.IncludesExpenses() {
		records = append(records, []string{"EXPENSES"}, expenseHeader)
		for i := range expenses {
			records = append(records, expenseRow(&expenses[i], loc))
		}
		records = append(records, blank,
			[]string{"Total Expenses", "", "", "", "", sumExpenses(expenses, nil).StringFixed(2)})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderXLSX renders the same sections as RenderCSV, one sheet each
func RenderXLSX(category enum.ReportCategory, bills []entity.Bill, expenses []entity.Expense, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	var sheets []string
	if category.IncludesSales() {
		sheets = append(sheets, "Sales")
	}
	if category.IncludesExpenses() {
		sheets = append(sheets, "Expenses")
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sections for category %s", category)
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheets[0]); err != nil {
		return nil, err
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	if category.IncludesSales() {
		rows := make([][]interface{}, 0, len(bills)+3)
		rows = append(rows, toCells(salesHeader))
		for i := range bills {
			b := &bills[i]
			rows = append(rows, []interface{}{
				b.BillNumber, b.CreatedAt.In(loc).Format(reportTimeLayout), b.Platform, b.PaymentMethod,
				b.Subtotal.InexactFloat64(), b.GST.InexactFloat64(), b.ServiceCharge.InexactFloat64(), b.Total.InexactFloat64(),
			})
		}
		rows = append(rows, nil, []interface{}{"Total Sales", nil, nil, nil, nil, nil, nil, sumBills(bills, nil).InexactFloat64()})
		if err := writeSheet(f, "Sales", rows); err != nil {
			return nil, err
		}
	}
	if category.IncludesExpenses() {
		rows := make([][]interface{}, 0, len(expenses)+3)
		rows = append(rows, toCells(expenseHeader))
		for i := range expenses {
			e := &expenses[i]
			rows = append(rows, []interface{}{
				e.Date.In(loc).Format(reportTimeLayout), e.CategoryName(), deref(e.Description),
				deref(e.VendorName), e.PaymentMethod, e.Amount.InexactFloat64(),
			})
		}
		rows = append(rows, nil, []interface{}{"Total Expenses", nil, nil, nil, nil, sumExpenses(expenses, nil).InexactFloat64()})
		if err := writeSheet(f, "Expenses", rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// PlatformTotal is the order count and takings of one sales channel
type PlatformTotal struct {
	Platform string
	Orders   int
	Total    decimal.Decimal
}

// ReportSummary holds the figures quoted in a report email
type ReportSummary struct {
	Cadence       enum.Cadence
	Category      enum.ReportCategory
	Window        Window
	TotalSales    decimal.Decimal
	CashSales     decimal.Decimal
	Platforms     []PlatformTotal
	TotalExpenses decimal.Decimal
	CashExpenses  decimal.Decimal
}

// NetCash is cash sales less cash expenses
func (s *ReportSummary) NetCash() decimal.Decimal {
	return s.CashSales.Sub(s.CashExpenses)
}

// Summarize computes the report figures
func Summarize(cadence enum.Cadence, category enum.ReportCategory, w Window, bills []entity.Bill, expenses []entity.Expense) *ReportSummary {
	s := &ReportSummary{
		Cadence:       cadence,
		Category:      category,
		Window:        w,
		TotalSales:    sumBills(bills, nil),
		CashSales:     sumBills(bills, isCashSale),
		TotalExpenses: sumExpenses(expenses, nil),
		CashExpenses:  sumExpenses(expenses, isCashExpense),
	}

	byPlatform := make(map[string]*PlatformTotal)
	for i := range bills {
		b := &bills[i]
		p, ok := byPlatform[b.Platform]
		if !ok {
			p = &PlatformTotal{Platform: b.Platform}
			byPlatform[b.Platform] = p
		}
		p.Orders++
		p.Total = p.Total.Add(b.Total)
	}
	for _, p := range byPlatform {
		s.Platforms = append(s.Platforms, *p)
	}
	sort.Slice(s.Platforms, func(i, j int) bool { return s.Platforms[i].Platform < s.Platforms[j].Platform })
	return s
}

// Text renders the summary as the plain-text email body
func (s *ReportSummary) Text(currency string) string {
	money := func(d decimal.Decimal) string { return currency + d.StringFixed(2) }

	var b strings.Builder
	fmt.Fprintf(&b, "Attached is the %s %s report for the period %s to %s.\n\n",
		s.Cadence, s.Category, s.Window.Start.Format("2006-01-02"), s.Window.End.Format("2006-01-02"))

	if s.Category.IncludesSales() {
		b.WriteString("Sales Summary:\n")
		fmt.Fprintf(&b, "Total Sales: %s\n", money(s.TotalSales))
		fmt.Fprintf(&b, "Cash Sales: %s\n", money(s.CashSales))
		b.WriteString("Platform Breakdown:\n")
		for _, p := range s.Platforms {
			fmt.Fprintf(&b, "%s: %d orders, Total: %s\n", p.Platform, p.Orders, money(p.Total))
		}
		b.WriteString("\n")
	}
	if s.Category.IncludesExpenses() {
		b.WriteString("Expense Summary:\n")
		fmt.Fprintf(&b, "Total Expenses: %s\n", money(s.TotalExpenses))
		fmt.Fprintf(&b, "Cash Expenses: %s\n", money(s.CashExpenses))
		b.WriteString("\n")
	}
	if s.Category == enum.ReportCategoryAll {
		b.WriteString("-----------------------------\n")
		fmt.Fprintf(&b, "Net Cash in Hand: %s\n", money(s.NetCash()))
	}
	return b.String()
}

func isCashSale(b *entity.Bill) bool {
	return strings.EqualFold(strings.TrimSpace(b.PaymentMethod), "cash")
}

func isCashExpense(e *entity.Expense) bool {
	m := strings.TrimSpace(e.PaymentMethod)
	return strings.EqualFold(m, "cash") || strings.EqualFold(m, "petty cash")
}

func sumBills(bills []entity.Bill, keep func(*entity.Bill) bool) decimal.Decimal {
	total := decimal.Zero
	for i := range bills {
		if keep == nil || keep(&bills[i]) {
			total = total.Add(bills[i].Total)
		}
	}
	return total
}

func sumExpenses(expenses []entity.Expense, keep func(*entity.Expense) bool) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		if keep == nil || keep(&expenses[i]) {
			total = total.Add(expenses[i].Amount)
		}
	}
	return total
}

// ParseRecipients splits a comma separated address list, dropping blanks
func ParseRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const (
	dashboardPageSize    = 10
	dashboardBestSellers = 10
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	bills     repository.BillRepository
	analytics repository.SalesAnalyticsRepository
	clock     *clock.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	bills repository.BillRepository,
	analytics repository.SalesAnalyticsRepository,
	clk *clock.Clock,
) *DashboardService {
	return &DashboardService{bills: bills, analytics: analytics, clock: clk}
}

// SummaryItem is a grouped total
type SummaryItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

// ChartPoint is one bucket of a chart
type ChartPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// RecentOrder is a bill row on the dashboard
type RecentOrder struct {
	ID            uuid.UUID       `json:"id"`
	BillNumber    string          `json:"bill_number"`
	Total         decimal.Decimal `json:"total"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	PaymentMethod string          `json:"payment_method"`
	Platform      string          `json:"platform"`
	Date          time.Time       `json:"date"`
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	GrossRevenue        decimal.Decimal `json:"gross_revenue"`
	TotalOrders         int             `json:"total_orders"`
	AvgOrderValue       decimal.Decimal `json:"avg_order_value"`
	PeakOrderTime       string          `json:"peak_order_time"`
	RevenueTrend        float64         `json:"revenue_trend"`
	OrdersTrend         float64         `json:"orders_trend"`
	AOVTrend            float64         `json:"aov_trend"`
	PaymentMethods      []SummaryItem   `json:"payment_methods"`
	PlatformBreakdown   []SummaryItem   `json:"platform_breakdown"`
	RevenueChart        []ChartPoint    `json:"revenue_chart"`
	OrderVolumeChart    []ChartPoint    `json:"order_volume_chart"`
	BestSellingProducts []SummaryItem   `json:"best_selling_products"`
	RecentOrders        []RecentOrder   `json:"recent_orders"`
}

// DashboardResult is the dashboard with the recent orders page
type DashboardResult struct {
	Summary    *DashboardStats        `json:"summary"`
	Pagination *pagination.Pagination `json:"pagination"`
}

// DashboardQuery selects the dashboard period. Dates are inclusive local
// YYYY-MM-DD values and default to today.
type DashboardQuery struct {
	UserID     uuid.UUID
	StartDate  string
	EndDate    string
	Pagination pagination.Params
}

// GetDashboardStats returns statistics for the period and trends against the
// preceding period of the same length
func (s *DashboardService) GetDashboardStats(ctx context.Context, q *DashboardQuery) (*DashboardResult, error) {
	today := s.clock.StartOfDay(s.clock.NowLocal())
	start, end := today, s.clock.NextDay(today)

	if q.StartDate != "" {
		d, err := s.clock.ParseLocalDate(q.StartDate)
		if err != nil {
			return nil, apperror.NewBadRequestError("Invalid start_date. Use YYYY-MM-DD")
		}
		start = d
	}
	if q.EndDate != "" {
		d, err := s.clock.ParseLocalDate(q.EndDate)
		if err != nil {
			return nil, apperror.NewBadRequestError("Invalid end_date. Use YYYY-MM-DD")
		}
		end = s.clock.NextDay(d)
	}
	if !start.Before(end) {
		return nil, apperror.NewBadRequestError("start_date must not be after end_date")
	}

	length := end.Sub(start)
	prevStart := start.Add(-length)

	current, err := s.bills.ListCreatedBetween(ctx, repository.BillWindowFilter{
		OwnerID: &q.UserID,
		Start:   s.clock.ToAbsolute(start),
		End:     s.clock.ToAbsolute(end),
	})
	if err != nil {
		return nil, err
	}
	previous, err := s.bills.ListCreatedBetween(ctx, repository.BillWindowFilter{
		OwnerID: &q.UserID,
		Start:   s.clock.ToAbsolute(prevStart),
		End:     s.clock.ToAbsolute(start),
	})
	if err != nil {
		return nil, err
	}
	best, err := s.analytics.BestSellers(ctx, q.UserID, s.clock.ToAbsolute(start), s.clock.ToAbsolute(end), dashboardBestSellers)
	if err != nil {
		return nil, err
	}

	page := q.Pagination
	if page.PageSize < 1 {
		page.PageSize = dashboardPageSize
	}
	page.Normalize()

	stats := BuildDashboard(current, previous, Window{Start: start, End: end}, s.clock.Location(), page)
	stats.BestSellingProducts = make([]SummaryItem, 0, len(best))
	for _, b := range best {
		stats.BestSellingProducts = append(stats.BestSellingProducts, SummaryItem{
			Name:   b.ProductName,
			Amount: b.Revenue,
			Count:  b.Quantity,
		})
	}

	return &DashboardResult{
		Summary:    stats,
		Pagination: pagination.NewPagination(page, int64(len(current))),
	}, nil
}

// BuildDashboard computes every figure except best sellers from the bills
// of the period and of the preceding period. Bill times are bucketed in loc.
func BuildDashboard(current, previous []entity.Bill, w Window, loc *time.Location, page pagination.Params) *DashboardStats {
	stats := &DashboardStats{
		TotalRevenue: sumBills(current, nil),
		TotalOrders:  len(current),
	}
	for i := range current {
		stats.GrossRevenue = stats.GrossRevenue.Add(current[i].Subtotal)
	}
	stats.AvgOrderValue = average(stats.TotalRevenue, len(current))

	prevRevenue := sumBills(previous, nil)
	prevAOV := average(prevRevenue, len(previous))
	stats.RevenueTrend = trend(stats.TotalRevenue, prevRevenue)
	stats.OrdersTrend = trend(decimal.NewFromInt(int64(len(current))), decimal.NewFromInt(int64(len(previous))))
	stats.AOVTrend = trend(stats.AvgOrderValue, prevAOV)

	stats.PeakOrderTime = peakHour(current, loc)
	stats.PaymentMethods = groupBills(current, func(b *entity.Bill) string { return b.PaymentMethod })
	stats.PlatformBreakdown = groupBills(current, func(b *entity.Bill) string { return b.Platform })
	stats.RevenueChart, stats.OrderVolumeChart = chartData(current, w, loc)

	sorted := make([]entity.Bill, len(current))
	copy(sorted, current)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	stats.RecentOrders = []RecentOrder{}
	for i := page.Offset(); i < len(sorted) && i < page.Offset()+page.PageSize; i++ {
		b := &sorted[i]
		stats.RecentOrders = append(stats.RecentOrders, RecentOrder{
			ID:            b.ID,
			BillNumber:    b.BillNumber,
			Total:         b.Total,
			Subtotal:      b.Subtotal,
			PaymentMethod: b.PaymentMethod,
			Platform:      b.Platform,
			Date:          b.CreatedAt.In(loc),
		})
	}
	return stats
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// trend is the percentage change; growth from nothing counts as 100
func trend(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// peakHour is the busiest hour; ties go to the earliest hour
func peakHour(bills []entity.Bill, loc *time.Location) string {
	var counts [24]int
	for i := range bills {
		counts[bills[i].CreatedAt.In(loc).Hour()]++
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[peak] {
			peak = h
		}
	}
	return fmt.Sprintf("%02d:00 - %02d:00", peak, (peak+1)%24)
}

func groupBills(bills []entity.Bill, key func(*entity.Bill) string) []SummaryItem {
	index := make(map[string]int)
	items := []SummaryItem{}
	for i := range bills {
		k := key(&bills[i])
		pos, ok := index[k]
		if !ok {
			pos = len(items)
			index[k] = pos
			items = append(items, SummaryItem{Name: k})
		}
		items[pos].Amount = items[pos].Amount.Add(bills[i].Total)
		items[pos].Count++
	}
	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].Amount.Cmp(items[j].Amount); c != 0 {
			return c > 0
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// chartData buckets by hour for periods up to two days, by month for
// periods over sixty days and by day otherwise
func chartData(bills []entity.Bill, w Window, loc *time.Location) ([]ChartPoint, []ChartPoint) {
	days := w.End.Sub(w.Start).Hours() / 24

	var labels []string
	var bucket func(t time.Time) string
	switch {
	case days <= 2:
		bucket = func(t time.Time) string { return fmt.Sprintf("%02d:00", t.Hour()) }
		for h := 0; h < 24; h++ {
			labels = append(labels, fmt.Sprintf("%02d:00", h))
		}
	case days > 60:
		bucket = func(t time.Time) string { return t.Format("Jan 2006") }
		for d := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, loc); d.Before(w.End); d = d.AddDate(0, 1, 0) {
			labels = append(labels, d.Format("Jan 2006"))
		}
	default:
		bucket = func(t time.Time) string { return t.Format("Jan 02") }
		for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
			labels = append(labels, d.Format("Jan 02"))
		}
	}

	revenue := make(map[string]decimal.Decimal, len(labels))
	orders := make(map[string]int, len(labels))
	for i := range bills {
		k := bucket(bills[i].CreatedAt.In(loc))
		revenue[k] = revenue[k].Add(bills[i].Total)
		orders[k]++
	}

	revenuePoints := make([]ChartPoint, 0, len(labels))
	orderPoints := make([]ChartPoint, 0, len(labels))
	for _, l := range labels {
		revenuePoints = append(revenuePoints, ChartPoint{Label: l, Value: revenue[l], Count: orders[l]})
		orderPoints = append(orderPoints, ChartPoint{Label: l, Value: decimal.NewFromInt(int64(orders[l])), Count: orders[l]})
	}
	return revenuePoints, orderPoints
}

package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

type fakeAnalytics struct {
	rows []repository.ItemSales
}

func (a *fakeAnalytics) BestSellers(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]repository.ItemSales, error) {
	return a.rows, nil
}

func dashboardBills() []entity.Bill {
	return []entity.Bill{
		{BillNumber: "B1", Subtotal: money("95"), Total: money("100"), PaymentMethod: "Cash", Platform: "Direct", CreatedAt: local(2025, 3, 15, 10, 15)},
		{BillNumber: "B2", Subtotal: money("48"), Total: money("50"), PaymentMethod: "Card", Platform: "Swiggy", CreatedAt: local(2025, 3, 15, 10, 45)},
		{BillNumber: "B3", Subtotal: money("148"), Total: money("150"), PaymentMethod: "Cash", Platform: "Direct", CreatedAt: local(2025, 3, 15, 19, 5)},
	}
}

func TestBuildDashboard(t *testing.T) {
	w := Window{Start: local(2025, 3, 15, 0, 0), End: local(2025, 3, 16, 0, 0)}
	previous := []entity.Bill{
		{Total: money("100"), CreatedAt: local(2025, 3, 14, 12, 0)},
		{Total: money("100"), CreatedAt: local(2025, 3, 14, 13, 0)},
	}

	stats := BuildDashboard(dashboardBills(), previous, w, ist, pagination.Params{Page: 1, PageSize: 2})

	if !stats.TotalRevenue.Equal(money("300")) || !stats.GrossRevenue.Equal(money("291")) {
		t.Fatalf("revenue = %s gross = %s", stats.TotalRevenue, stats.GrossRevenue)
	}
	if stats.TotalOrders != 3 || !stats.AvgOrderValue.Equal(money("100")) {
		t.Fatalf("orders = %d aov = %s", stats.TotalOrders, stats.AvgOrderValue)
	}
	if stats.RevenueTrend != 50 || stats.OrdersTrend != 50 || stats.AOVTrend != 0 {
		t.Fatalf("trends = %v %v %v", stats.RevenueTrend, stats.OrdersTrend, stats.AOVTrend)
	}
	if stats.PeakOrderTime != "10:00 - 11:00" {
		t.Fatalf("peak = %q", stats.PeakOrderTime)
	}

	if len(stats.PaymentMethods) != 2 || stats.PaymentMethods[0].Name != "Cash" || stats.PaymentMethods[0].Count != 2 {
		t.Fatalf("payment methods = %+v", stats.PaymentMethods)
	}
	if stats.PlatformBreakdown[0].Name != "Direct" || !stats.PlatformBreakdown[0].Amount.Equal(money("250")) {
		t.Fatalf("platforms = %+v", stats.PlatformBreakdown)
	}

	if len(stats.RevenueChart) != 24 {
		t.Fatalf("hourly chart has %d points", len(stats.RevenueChart))
	}
	if stats.RevenueChart[10].Label != "10:00" || !stats.RevenueChart[10].Value.Equal(money("150")) || stats.OrderVolumeChart[10].Count != 2 {
		t.Fatalf("10:00 bucket = %+v", stats.RevenueChart[10])
	}

	if len(stats.RecentOrders) != 2 || stats.RecentOrders[0].BillNumber != "B3" || stats.RecentOrders[1].BillNumber != "B2" {
		t.Fatalf("recent orders = %+v", stats.RecentOrders)
	}
}

func TestBuildDashboardEmptyPeriods(t *testing.T) {
	w := Window{Start: local(2025, 3, 15, 0, 0), End: local(2025, 3, 16, 0, 0)}

	stats := BuildDashboard(nil, nil, w, ist, pagination.Params{Page: 1, PageSize: 10})
	if stats.RevenueTrend != 0 || !stats.AvgOrderValue.IsZero() || len(stats.RecentOrders) != 0 {
		t.Fatalf("empty stats = %+v", stats)
	}

	stats = BuildDashboard(dashboardBills(), nil, w, ist, pagination.Params{Page: 1, PageSize: 10})
	if stats.RevenueTrend != 100 || stats.OrdersTrend != 100 {
		t.Fatalf("growth from nothing = %v %v", stats.RevenueTrend, stats.OrdersTrend)
	}
}

func TestChartBuckets(t *testing.T) {
	tests := []struct {
		name   string
		w      Window
		points int
		first  string
	}{
		{"daily", Window{Start: local(2025, 3, 1, 0, 0), End: local(2025, 3, 8, 0, 0)}, 7, "Mar 01"},
		{"monthly", Window{Start: local(2025, 1, 1, 0, 0), End: local(2025, 4, 1, 0, 0)}, 3, "Jan 2025"},
		{"two days hourly", Window{Start: local(2025, 3, 1, 0, 0), End: local(2025, 3, 3, 0, 0)}, 24, "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revenue, orders := chartData(dashboardBills(), tt.w, ist)
			if len(revenue) != tt.points || len(orders) != tt.points {
				t.Fatalf("points = %d/%d, want %d", len(revenue), len(orders), tt.points)
			}
			if revenue[0].Label != tt.first {
				t.Fatalf("first label = %q", revenue[0].Label)
			}
		})
	}
}

func TestGetDashboardStats(t *testing.T) {
	owner := uuid.New()
	bills := dashboardBills()
	for i := range bills {
		bills[i].UserID = owner
	}
	// yesterday, the comparison period
	bills = append(bills, entity.Bill{UserID: owner, Total: money("600"), CreatedAt: local(2025, 3, 14, 9, 0)})
	// another owner's bill never shows up
	bills = append(bills, entity.Bill{UserID: uuid.New(), Total: money("999"), CreatedAt: local(2025, 3, 15, 9, 0)})

	analytics := &fakeAnalytics{rows: []repository.ItemSales{{ProductName: "Idli", Quantity: 7, Revenue: decimal.NewFromInt(210)}}}
	svc := NewDashboardService(&fakeBillRepo{bills: bills}, analytics, testClock(local(2025, 3, 15, 21, 0)))

	result, err := svc.GetDashboardStats(context.Background(), &DashboardQuery{UserID: owner})
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if !result.Summary.TotalRevenue.Equal(money("300")) {
		t.Fatalf("revenue = %s", result.Summary.TotalRevenue)
	}
	if result.Summary.RevenueTrend != -50 {
		t.Fatalf("revenue trend = %v", result.Summary.RevenueTrend)
	}
	if result.Pagination.PageSize != dashboardPageSize || result.Pagination.Total != 3 {
		t.Fatalf("pagination = %+v", result.Pagination)
	}
	if len(result.Summary.BestSellingProducts) != 1 || result.Summary.BestSellingProducts[0].Count != 7 {
		t.Fatalf("best sellers = %+v", result.Summary.BestSellingProducts)
	}

	_, err = svc.GetDashboardStats(context.Background(), &DashboardQuery{UserID: owner, StartDate: "2025-03-16", EndDate: "2025-03-15"})
	if apperror.GetAppError(err).Code != http.StatusBadRequest {
		t.Fatalf("inverted range: %v", err)
	}
}

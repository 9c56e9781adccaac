package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/lock"
	"github.com/sangkips/restopos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxBillAttempts = 5
	billLockTTL     = 10 * time.Second
	billLockWait    = 5 * time.Second
)

// BillService handles bill-related operations
type BillService struct {
	bills    repository.BillRepository
	products repository.ProductRepository
	sequence *BillSequence
	locker   lock.Locker
	clock    *clock.Clock
	log      logrus.FieldLogger
}

// NewBillService creates a new bill service
func NewBillService(
	bills repository.BillRepository,
	products repository.ProductRepository,
	locker lock.Locker,
	clk *clock.Clock,
	log logrus.FieldLogger,
) *BillService {
	return &BillService{
		bills:    bills,
		products: products,
		sequence: NewBillSequence(bills, clk),
		locker:   locker,
		clock:    clk,
		log:      log,
	}
}

// BillItemInput is one line of a submitted bill
type BillItemInput struct {
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Total     decimal.Decimal
}

// CreateBillInput represents the create bill input. Totals are taken as
// computed by the till.
type CreateBillInput struct {
	UserID        uuid.UUID
	Subtotal      decimal.Decimal
	GST           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Platform      string
	CustomerName  *string
	CustomerPhone *string
	Date          *time.Time
	Items         []BillItemInput
}

// CreateBill stores a bill under the next token of its local day
func (s *BillService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Bill must contain at least one item")
	}
	if err := s.checkProducts(ctx, input); err != nil {
		return nil, err
	}

	billDate := s.clock.NowLocal()
	if input.Date != nil && !input.Date.IsZero() {
		billDate = s.clock.ToLocal(*input.Date)
	}

	key := fmt.Sprintf("bill-token:%s:%s", input.UserID, billDate.Format("20060102"))
	lk, err := s.locker.Obtain(ctx, key, billLockTTL, billLockWait)
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, apperror.NewConflictError("Another bill is being numbered, please retry")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain bill lock: %w", err)
	}
	defer func() {
		if err := lk.Release(context.Background()); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("failed to release bill lock")
		}
	}()

	for attempt := 1; attempt <= maxBillAttempts; attempt++ {
		token, err := s.sequence.NextToken(ctx, input.UserID, billDate)
		if err != nil {
			return nil, err
		}

		bill := s.newBill(input, billDate, token)
		err = s.bills.Create(ctx, bill)
		if err == nil {
			return bill, nil
		}
		if !errors.Is(err, repository.ErrDuplicateBillNumber) {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"bill_number": bill.BillNumber,
			"attempt":     attempt,
		}).Warn("bill number taken, recounting")
	}
	return nil, apperror.NewConflictError("Could not allocate a bill number, please retry")
}

func (s *BillService) checkProducts(ctx context.Context, input *CreateBillInput) error {
	ids := make([]uuid.UUID, 0, len(input.Items))
	seen := make(map[uuid.UUID]bool, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return apperror.NewBadRequestError(fmt.Sprintf("Quantity for %s must be positive", item.Name))
		}
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, input.UserID, ids)
	if err != nil {
		return err
	}
	if len(products) == len(ids) {
		return nil
	}
	found := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return apperror.NewNotFoundError(fmt.Sprintf("Product %s", id))
		}
	}
	return nil
}

func (s *BillService) newBill(input *CreateBillInput, billDate time.Time, token int) *entity.Bill {
	platform := strings.TrimSpace(input.Platform)
	if platform == "" {
		platform = entity.DefaultPlatform
	}

	now := s.clock.NowLocal()
	items := make([]entity.BillItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, entity.BillItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Total:       item.Total,
			CreatedAt:   now,
		})
	}

	return &entity.Bill{
		UserID:        input.UserID,
		TokenNumber:   token,
		BillNumber:    BillNumber(billDate, token),
		Subtotal:      input.Subtotal,
		GST:           input.GST,
		ServiceCharge: input.ServiceCharge,
		Total:         input.Total,
		PaymentMethod: input.PaymentMethod,
		Platform:      platform,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CreatedAt:     billDate,
		Items:         items,
	}
}

// GetBill retrieves one of the owner's bills
func (s *BillService) GetBill(ctx context.Context, ownerID, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.bills.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBillsInput filters a bill listing. Dates are local YYYY-MM-DD values;
// EndDate is inclusive.
type ListBillsInput struct {
	UserID     uuid.UUID
	Pagination pagination.Params
	StartDate  string
	EndDate    string
}

// ListBills lists the owner's bills, newest first
func (s *BillService) ListBills(ctx context.Context, input *ListBillsInput) (*pagination.PaginatedResult[entity.Bill], error) {
	start, end, err := localDateRange(s.clock, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	params := &repository.BillFilterParams{Pagination: input.Pagination, Start: start, End: end}
	bills, total, err := s.bills.List(ctx, input.UserID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(bills, params.Pagination, total), nil
}

// localDateRange converts optional inclusive local dates into absolute half-open bounds
func localDateRange(clk *clock.Clock, startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		d, err := clk.ParseLocalDate(startDate)
		if err != nil {
			return nil, nil, apperror.NewBadRequestError("Invalid start_date. Use YYYY-MM-DD")
		}
		abs := clk.ToAbsolute(d)
		start = &abs
	}
	if endDate != "" {
		d, err := clk.ParseLocalDate(endDate)
		if err != nil {
			return nil, nil, apperror.NewBadRequestError("Invalid end_date. Use YYYY-MM-DD")
		}
		abs := clk.ToAbsolute(clk.NextDay(d))
		end = &abs
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, apperror.NewBadRequestError("start_date must not be after end_date")
	}
	return start, end, nil
}

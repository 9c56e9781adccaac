package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/lock"
	"github.com/sangkips/restopos-api/pkg/pagination"
)

type billFixture struct {
	service  *BillService
	bills    *fakeBillRepo
	owner    uuid.UUID
	product  entity.Product
	products *fakeProductRepo
}

func newBillFixture(now time.Time) *billFixture {
	owner := uuid.New()
	product := entity.Product{ID: uuid.New(), UserID: owner, Name: "Masala Dosa", Price: money("80"), IsActive: true}
	products := &fakeProductRepo{products: []entity.Product{product}}
	bills := &fakeBillRepo{}
	return &billFixture{
		service:  NewBillService(bills, products, lock.NewLocalLocker(), testClock(now), testLogger()),
		bills:    bills,
		owner:    owner,
		product:  product,
		products: products,
	}
}

func (f *billFixture) input() *CreateBillInput {
	return &CreateBillInput{
		UserID:        f.owner,
		Subtotal:      money("160"),
		GST:           money("8"),
		Total:         money("168"),
		PaymentMethod: "Cash",
		Items: []BillItemInput{
			{ProductID: f.product.ID, Name: f.product.Name, Price: f.product.Price, Quantity: 2, Total: money("160")},
		},
	}
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return apperror.GetAppError(err).Code
}

func TestCreateBillNumbersDaily(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	ctx := context.Background()

	var last *entity.Bill
	for i := 1; i <= 3; i++ {
		bill, err := f.service.CreateBill(ctx, f.input())
		if err != nil {
			t.Fatalf("CreateBill %d: %v", i, err)
		}
		if bill.TokenNumber != i {
			t.Fatalf("token = %d, want %d", bill.TokenNumber, i)
		}
		last = bill
	}
	if last.BillNumber != "BILL-20250307-003" {
		t.Fatalf("bill number = %q", last.BillNumber)
	}
	if last.Platform != entity.DefaultPlatform {
		t.Fatalf("platform = %q", last.Platform)
	}
	if len(last.Items) != 1 || last.Items[0].ProductName != "Masala Dosa" {
		t.Fatalf("items = %+v", last.Items)
	}

	// a backdated bill starts that day's sequence
	yesterday := local(2025, 3, 6, 20, 0)
	in := f.input()
	in.Date = &yesterday
	bill, err := f.service.CreateBill(ctx, in)
	if err != nil {
		t.Fatalf("CreateBill backdated: %v", err)
	}
	if bill.TokenNumber != 1 || bill.BillNumber != "BILL-20250306-001" {
		t.Fatalf("backdated bill = %d %q", bill.TokenNumber, bill.BillNumber)
	}

	// owners do not share a sequence
	other := newBillFixture(local(2025, 3, 7, 13, 0))
	shared := NewBillService(f.bills, other.products, lock.NewLocalLocker(), testClock(local(2025, 3, 7, 13, 0)), testLogger())
	bill, err = shared.CreateBill(ctx, other.input())
	if err != nil {
		t.Fatalf("CreateBill other owner: %v", err)
	}
	if bill.TokenNumber != 1 {
		t.Fatalf("other owner token = %d", bill.TokenNumber)
	}
}

func TestCreateBillTokenUsesLocalDay(t *testing.T) {
	// 00:30 local is still the previous day in UTC
	f := newBillFixture(local(2025, 3, 7, 0, 30))
	ctx := context.Background()

	late := local(2025, 3, 6, 23, 50)
	in := f.input()
	in.Date = &late
	if _, err := f.service.CreateBill(ctx, in); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	bill, err := f.service.CreateBill(ctx, f.input())
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if bill.TokenNumber != 1 || bill.BillNumber != "BILL-20250307-001" {
		t.Fatalf("first bill after midnight = %d %q", bill.TokenNumber, bill.BillNumber)
	}
}

func TestCreateBillRetriesOnDuplicateNumber(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	raced := false
	f.bills.createHook = func(r *fakeBillRepo, bill *entity.Bill) error {
		if raced {
			return nil
		}
		raced = true
		// another writer stored the same number first
		r.bills = append(r.bills, entity.Bill{ID: uuid.New(), UserID: bill.UserID, BillNumber: bill.BillNumber, CreatedAt: bill.CreatedAt})
		return repository.ErrDuplicateBillNumber
	}

	bill, err := f.service.CreateBill(context.Background(), f.input())
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if bill.TokenNumber != 2 || bill.BillNumber != "BILL-20250307-002" {
		t.Fatalf("bill after retry = %d %q", bill.TokenNumber, bill.BillNumber)
	}
}

func TestCreateBillGivesUpAfterRetries(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	attempts := 0
	f.bills.createHook = func(r *fakeBillRepo, bill *entity.Bill) error {
		attempts++
		return repository.ErrDuplicateBillNumber
	}

	_, err := f.service.CreateBill(context.Background(), f.input())
	if code := appCode(t, err); code != http.StatusConflict {
		t.Fatalf("code = %d", code)
	}
	if attempts != maxBillAttempts {
		t.Fatalf("attempts = %d", attempts)
	}
}

func TestCreateBillStorageErrorIsNotRetried(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	dbDown := errors.New("connection refused")
	f.bills.createHook = func(r *fakeBillRepo, bill *entity.Bill) error { return dbDown }

	if _, err := f.service.CreateBill(context.Background(), f.input()); !errors.Is(err, dbDown) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCreateBillConcurrentTokensAreDense(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	const n = 20

	var wg sync.WaitGroup
	tokens := make(chan int, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bill, err := f.service.CreateBill(context.Background(), f.input())
			if err != nil {
				errs <- err
				return
			}
			tokens <- bill.TokenNumber
		}()
	}
	wg.Wait()
	close(tokens)
	close(errs)

	for err := range errs {
		t.Fatalf("CreateBill: %v", err)
	}
	var got []int
	for tok := range tokens {
		got = append(got, tok)
	}
	sort.Ints(got)
	for i, tok := range got {
		if tok != i+1 {
			t.Fatalf("tokens = %v, want 1..%d", got, n)
		}
	}
}

func TestCreateBillValidation(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	ctx := context.Background()

	empty := f.input()
	empty.Items = nil
	if _, err := f.service.CreateBill(ctx, empty); appCode(t, err) != http.StatusBadRequest {
		t.Fatalf("empty bill: %v", err)
	}

	zero := f.input()
	zero.Items[0].Quantity = 0
	if _, err := f.service.CreateBill(ctx, zero); appCode(t, err) != http.StatusBadRequest {
		t.Fatalf("zero quantity: %v", err)
	}

	unknown := f.input()
	unknown.Items[0].ProductID = uuid.New()
	if _, err := f.service.CreateBill(ctx, unknown); appCode(t, err) != http.StatusNotFound {
		t.Fatalf("unknown product: %v", err)
	}

	if len(f.bills.bills) != 0 {
		t.Fatal("rejected bills must not be stored")
	}
}

func TestListBillsDateFilter(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	ctx := context.Background()
	for _, at := range []time.Time{local(2025, 3, 5, 10, 0), local(2025, 3, 6, 23, 59), local(2025, 3, 7, 9, 0)} {
		in := f.input()
		d := at
		in.Date = &d
		if _, err := f.service.CreateBill(ctx, in); err != nil {
			t.Fatalf("CreateBill: %v", err)
		}
	}

	result, err := f.service.ListBills(ctx, &ListBillsInput{
		UserID:    f.owner,
		StartDate: "2025-03-06",
		EndDate:   "2025-03-06",
	})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].BillNumber != "BILL-20250306-001" {
		t.Fatalf("items = %+v", result.Items)
	}
	if result.Pagination.PageSize != pagination.DefaultPageSize {
		t.Fatalf("page size = %d", result.Pagination.PageSize)
	}

	if _, err := f.service.ListBills(ctx, &ListBillsInput{UserID: f.owner, StartDate: "07/03/2025"}); appCode(t, err) != http.StatusBadRequest {
		t.Fatalf("bad date: %v", err)
	}
	if _, err := f.service.ListBills(ctx, &ListBillsInput{UserID: f.owner, StartDate: "2025-03-08", EndDate: "2025-03-06"}); appCode(t, err) != http.StatusBadRequest {
		t.Fatalf("inverted range: %v", err)
	}
}

func TestGetBillScopedToOwner(t *testing.T) {
	f := newBillFixture(local(2025, 3, 7, 13, 0))
	bill, err := f.service.CreateBill(context.Background(), f.input())
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if _, err := f.service.GetBill(context.Background(), uuid.New(), bill.ID); appCode(t, err) != http.StatusNotFound {
		t.Fatalf("foreign owner: %v", err)
	}
	got, err := f.service.GetBill(context.Background(), f.owner, bill.ID)
	if err != nil || got.BillNumber != bill.BillNumber {
		t.Fatalf("GetBill = %+v, %v", got, err)
	}
}

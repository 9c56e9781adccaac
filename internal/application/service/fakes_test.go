package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// ist is a fixed +05:30 zone so tests do not depend on tzdata
var ist = time.FixedZone("IST", 5*3600+30*60)

func testClock(at time.Time) *clock.Clock {
	return clock.NewFixed(ist, at)
}

func testLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func local(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, ist)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// bills

type fakeBillRepo struct {
	mu    sync.Mutex
	bills []entity.Bill
	// createHook runs before a create is stored; a non-nil error aborts it
	createHook func(r *fakeBillRepo, bill *entity.Bill) error
}

func (r *fakeBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createHook != nil {
		if err := r.createHook(r, bill); err != nil {
			return err
		}
	}
	for _, b := range r.bills {
		if b.UserID == bill.UserID && b.BillNumber == bill.BillNumber {
			return repository.ErrDuplicateBillNumber
		}
	}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.bills = append(r.bills, *bill)
	return nil
}

func (r *fakeBillRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bills {
		if r.bills[i].UserID == ownerID && r.bills[i].ID == id {
			b := r.bills[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (r *fakeBillRepo) List(ctx context.Context, ownerID uuid.UUID, params *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	params.Pagination.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Bill
	for _, b := range r.bills {
		if b.UserID != ownerID {
			continue
		}
		if params.Start != nil && b.CreatedAt.Before(*params.Start) {
			continue
		}
		if params.End != nil && !b.CreatedAt.Before(*params.End) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	from := params.Pagination.Offset()
	if from > len(out) {
		from = len(out)
	}
	to := from + params.Pagination.PageSize
	if to > len(out) {
		to = len(out)
	}
	return out[from:to], total, nil
}

func (r *fakeBillRepo) CountCreatedBetween(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bills {
		if b.UserID == ownerID && !b.CreatedAt.Before(start) && b.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBillRepo) ListCreatedBetween(ctx context.Context, filter repository.BillWindowFilter) ([]entity.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Bill
	for _, b := range r.bills {
		if filter.OwnerID != nil && b.UserID != *filter.OwnerID {
			continue
		}
		if !b.CreatedAt.Before(filter.Start) && b.CreatedAt.Before(filter.End) {
			out = append(out, b)
		}
	}
	return out, nil
}

// products

type fakeProductRepo struct {
	products []entity.Product
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products = append(r.products, *product)
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	for i := range r.products {
		if r.products[i].UserID == ownerID && r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, _ := r.GetByID(ctx, ownerID, id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	for i := range r.products {
		if r.products[i].ID == product.ID {
			r.products[i] = *product
		}
	}
	return nil
}

func (r *fakeProductRepo) ListActive(ctx context.Context, ownerID uuid.UUID, params *repository.ProductFilterParams) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.products {
		if p.UserID == ownerID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	categories []entity.ProductCategory
	products   *fakeProductRepo
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entity.ProductCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.ProductCategory, error) {
	for i := range r.categories {
		if r.categories[i].UserID == ownerID && r.categories[i].ID == id {
			c := r.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*entity.ProductCategory, error) {
	for i := range r.categories {
		if r.categories[i].UserID == ownerID && r.categories[i].IsActive && strings.EqualFold(r.categories[i].Name, name) {
			c := r.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) ListActive(ctx context.Context, ownerID uuid.UUID) ([]entity.ProductCategory, error) {
	var out []entity.ProductCategory
	for _, c := range r.categories {
		if c.UserID == ownerID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *entity.ProductCategory) error {
	for i := range r.categories {
		if r.categories[i].ID == category.ID {
			r.categories[i] = *category
		}
	}
	return nil
}

func (r *fakeCategoryRepo) Rename(ctx context.Context, category *entity.ProductCategory, oldName string) error {
	if err := r.Update(ctx, category); err != nil {
		return err
	}
	for i := range r.products.products {
		p := &r.products.products[i]
		if p.UserID == category.UserID && p.Category == oldName {
			p.Category = category.Name
		}
	}
	return nil
}

// expenses

type fakeExpenseRepo struct {
	categories []entity.ExpenseCategory
	expenses   []entity.Expense
}

func (r *fakeExpenseRepo) CreateCategory(ctx context.Context, category *entity.ExpenseCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeExpenseRepo) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*entity.ExpenseCategory, error) {
	for i := range r.categories {
		if r.categories[i].UserID == ownerID && r.categories[i].ID == id {
			c := r.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeExpenseRepo) ListActiveCategories(ctx context.Context, ownerID uuid.UUID) ([]entity.ExpenseCategory, error) {
	var out []entity.ExpenseCategory
	for _, c := range r.categories {
		if c.UserID == ownerID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *fakeExpenseRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Expense, error) {
	for i := range r.expenses {
		if r.expenses[i].UserID == ownerID && r.expenses[i].ID == id {
			e := r.expenses[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeExpenseRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	kept := r.expenses[:0]
	for _, e := range r.expenses {
		if !(e.UserID == ownerID && e.ID == id) {
			kept = append(kept, e)
		}
	}
	r.expenses = kept
	return nil
}

func (r *fakeExpenseRepo) inRange(e *entity.Expense, start, end *time.Time) bool {
	if start != nil && e.Date.Before(*start) {
		return false
	}
	if end != nil && !e.Date.Before(*end) {
		return false
	}
	return true
}

func (r *fakeExpenseRepo) List(ctx context.Context, ownerID uuid.UUID, params *repository.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	params.Pagination.Normalize()
	var out []entity.Expense
	for i := range r.expenses {
		e := &r.expenses[i]
		if e.UserID != ownerID || !r.inRange(e, params.Start, params.End) {
			continue
		}
		if params.CategoryID != nil && e.CategoryID != *params.CategoryID {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) Sum(ctx context.Context, ownerID uuid.UUID, filter repository.ExpenseSumFilter) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range r.expenses {
		e := &r.expenses[i]
		if e.UserID == ownerID && r.inRange(e, filter.Start, filter.End) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (r *fakeExpenseRepo) TopCategories(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]repository.CategoryTotal, error) {
	byID := make(map[uuid.UUID]*repository.CategoryTotal)
	var out []*repository.CategoryTotal
	for i := range r.expenses {
		e := &r.expenses[i]
		if e.UserID != ownerID || !r.inRange(e, &start, &end) {
			continue
		}
		total, ok := byID[e.CategoryID]
		if !ok {
			total = &repository.CategoryTotal{CategoryID: e.CategoryID}
			if c, _ := r.GetCategory(ctx, ownerID, e.CategoryID); c != nil {
				total.CategoryName = c.Name
			}
			byID[e.CategoryID] = total
			out = append(out, total)
		}
		total.Total = total.Total.Add(e.Amount)
		total.Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	if len(out) > limit {
		out = out[:limit]
	}
	result := make([]repository.CategoryTotal, 0, len(out))
	for _, t := range out {
		result = append(result, *t)
	}
	return result, nil
}

func (r *fakeExpenseRepo) ListDatedBetween(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) ([]entity.Expense, error) {
	var out []entity.Expense
	for i := range r.expenses {
		e := &r.expenses[i]
		if ownerID != nil && e.UserID != *ownerID {
			continue
		}
		if r.inRange(e, &start, &end) {
			out = append(out, *e)
		}
	}
	return out, nil
}

// report schedules

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules []entity.ReportSchedule
	marked    map[uuid.UUID]time.Time
}

func newFakeScheduleRepo(schedules ...entity.ReportSchedule) *fakeScheduleRepo {
	for i := range schedules {
		if schedules[i].ID == uuid.Nil {
			schedules[i].ID = uuid.New()
		}
	}
	return &fakeScheduleRepo{schedules: schedules, marked: make(map[uuid.UUID]time.Time)}
}

func (r *fakeScheduleRepo) List(ctx context.Context) ([]entity.ReportSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ReportSchedule(nil), r.schedules...), nil
}

func (r *fakeScheduleRepo) ListActive(ctx context.Context) ([]entity.ReportSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ReportSchedule
	for _, s := range r.schedules {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReportSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schedules {
		if r.schedules[i].ID == id {
			s := r.schedules[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, schedule *entity.ReportSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schedules {
		if r.schedules[i].ID == schedule.ID {
			r.schedules[i] = *schedule
		}
	}
	return nil
}

func (r *fakeScheduleRepo) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marked[id] = at
	for i := range r.schedules {
		if r.schedules[i].ID == id {
			t := at
			r.schedules[i].LastRun = &t
		}
	}
	return nil
}

// settings

type fakeSettingRepo struct {
	values map[string]string
}

func newFakeSettingRepo(kv ...string) *fakeSettingRepo {
	r := &fakeSettingRepo{values: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.values[kv[i]] = kv[i+1]
	}
	return r
}

func (r *fakeSettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *fakeSettingRepo) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := r.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (r *fakeSettingRepo) Upsert(ctx context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *fakeSettingRepo) UpsertMany(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

// dispatch and mail

type fakeDispatcher struct {
	mu       sync.Mutex
	requests []DispatchRequest
	result   *DispatchResult
	err      error
	// panicOn panics for requests of this cadence
	panicOn string
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panicOn != "" && strings.EqualFold(req.Cadence.String(), d.panicOn) {
		panic("dispatcher exploded")
	}
	d.requests = append(d.requests, req)
	if d.err != nil {
		return nil, d.err
	}
	if d.result != nil {
		return d.result, nil
	}
	return &DispatchResult{}, nil
}

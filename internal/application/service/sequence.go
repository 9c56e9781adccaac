package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/clock"
)

// BillSequence issues the daily token for an owner's next bill
type BillSequence struct {
	bills repository.BillRepository
	clock *clock.Clock
}

// NewBillSequence creates a new bill sequence
func NewBillSequence(bills repository.BillRepository, clk *clock.Clock) *BillSequence {
	return &BillSequence{bills: bills, clock: clk}
}

// NextToken returns the count of the owner's bills created on the local day
// of localDate, plus one. Callers serialize per owner and day.
func (s *BillSequence) NextToken(ctx context.Context, ownerID uuid.UUID, localDate time.Time) (int, error) {
	start := s.clock.ToAbsolute(s.clock.StartOfDay(localDate))
	end := s.clock.ToAbsolute(s.clock.NextDay(localDate))

	count, err := s.bills.CountCreatedBetween(ctx, ownerID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}
	return int(count) + 1, nil
}

// BillNumber formats the display number of a bill
func BillNumber(localDate time.Time, token int) string {
	return fmt.Sprintf("BILL-%s-%03d", localDate.Format("20060102"), token)
}

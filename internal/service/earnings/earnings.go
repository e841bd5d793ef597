package earnings

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
	"github.com/safaiwalay/dispatch/internal/service/booking"
)

// Summary is the earnings dashboard for one cleaner.
// Window totals come from the ledger, pending cashout from the stored
// balance; the two can legitimately differ after withdrawals.
type Summary struct {
	Today          decimal.Decimal
	Week           decimal.Decimal
	Month          decimal.Decimal
	PendingCashout decimal.Decimal
	CompletedJobs  int
	TotalHours     float64
}

type EarningsService struct {
	logger  logger.Logger
	storage repository.Storage
	now     func() time.Time
}

func NewService(l logger.Logger, storage repository.Storage) *EarningsService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &EarningsService{
		logger:  l,
		storage: storage,
		now:     time.Now,
	}
}

// Summary aggregates the cleaner's ledger over the UTC day, week and
// month windows containing now
func (s *EarningsService) Summary(ctx context.Context, cleaner *models.Cleaner) (Summary, error) {
	entries, err := s.storage.Ledger().ListEntries(ctx, cleaner.ID)
	if err != nil {
		return Summary{}, err
	}

	owned, err := s.storage.Booking().ListByCleaner(ctx, cleaner.ID)
	if err != nil {
		return Summary{}, err
	}

	now := s.now().UTC()

	var worked time.Duration
	for _, b := range owned {
		if b.PaymentCollectedAt == nil {
			continue
		}
		worked += booking.WorkingDuration(b, now)
	}

	return Summary{
		Today:          SumSince(s.logger, entries, StartOfDay(now)),
		Week:           SumSince(s.logger, entries, StartOfWeek(now)),
		Month:          SumSince(s.logger, entries, StartOfMonth(now)),
		PendingCashout: cleaner.Balance,
		CompletedJobs:  CountValid(entries),
		TotalHours:     worked.Hours(),
	}, nil
}

// Ledger returns the raw entries, newest first
func (s *EarningsService) Ledger(ctx context.Context, cleaner *models.Cleaner) ([]models.EarningsEntry, error) {
	return s.storage.Ledger().ListEntries(ctx, cleaner.ID)
}

// Withdraw atomically moves amount out of the cleaner's balance and
// records the withdrawal. The balance check lives inside the debit
// update, so two concurrent withdrawals can never overdraw.
func (s *EarningsService) Withdraw(ctx context.Context, cleaner *models.Cleaner, amount decimal.Decimal) (models.Withdrawal, error) {
	if !amount.IsPositive() {
		return models.Withdrawal{}, errors.New("withdrawal amount must be positive")
	}

	var withdrawal models.Withdrawal
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		_, err := st.Cleaner().Debit(ctx, cleaner.ID, amount)
		if err != nil {
			return err
		}

		withdrawal, err = st.Ledger().CreateWithdrawal(ctx, models.Withdrawal{
			CleanerID: cleaner.ID,
			Amount:    amount,
		})
		return err
	})
	if err != nil {
		return models.Withdrawal{}, err
	}

	return withdrawal, nil
}

// Withdrawals returns the audit trail, newest first
func (s *EarningsService) Withdrawals(ctx context.Context, cleaner *models.Cleaner) ([]models.Withdrawal, error) {
	return s.storage.Ledger().ListWithdrawals(ctx, cleaner.ID)
}

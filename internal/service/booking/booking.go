package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/notify"
	"github.com/safaiwalay/dispatch/internal/repository"
)

type CreateParams struct {
	ServiceName string
	ScheduledAt time.Time
	Address     string
}

type BookingService struct {
	// Repository to access long term data
	storage repository.Storage

	// Change-notification fan-out, may be nil
	events *notify.Hub

	// Clock, swappable in tests
	now func() time.Time
}

func NewService(storage repository.Storage, events *notify.Hub) *BookingService {
	return &BookingService{
		storage: storage,
		events:  events,
		now:     time.Now,
	}
}

// Create books a service for a customer. The booking amount is the catalog
// price at creation time.
func (s *BookingService) Create(ctx context.Context, user *models.User, p CreateParams) (models.Booking, error) {
	service, err := s.storage.Service().GetServiceByName(ctx, p.ServiceName)
	if err != nil {
		return models.Booking{}, err
	}

	booking, err := s.storage.Booking().CreateBooking(ctx, repository.CreateBookingParams{
		UserID:      user.ID,
		ServiceID:   service.ID,
		ScheduledAt: p.ScheduledAt,
		Address:     p.Address,
		Amount:      service.Price,
	})
	if err != nil {
		return booking, err
	}

	s.publish(notify.TableBookings, notify.ActionCreated, booking)
	return booking, nil
}

// Claim turns a pending booking into this cleaner's work item.
// First successful guarded update wins; the loser gets
// apperrors.ErrBookingAlreadyClaimed from the repo.
func (s *BookingService) Claim(ctx context.Context, cleaner *models.Cleaner, bookingID uuid.UUID) (models.Booking, error) {
	booking, err := s.storage.Booking().Claim(ctx, bookingID, cleaner.ID, s.now().UTC())
	if err != nil {
		return booking, err
	}

	s.publish(notify.TableBookings, notify.ActionUpdated, booking)
	return booking, nil
}

func (s *BookingService) Start(ctx context.Context, cleaner *models.Cleaner, bookingID uuid.UUID) (models.Booking, error) {
	booking, err := s.storage.Booking().Start(ctx, bookingID, cleaner.ID, s.now().UTC())
	if err != nil {
		return booking, err
	}

	s.publish(notify.TableBookings, notify.ActionUpdated, booking)
	return booking, nil
}

func (s *BookingService) Pause(ctx context.Context, cleaner *models.Cleaner, bookingID uuid.UUID) (models.Booking, error) {
	booking, err := s.storage.Booking().Pause(ctx, bookingID, cleaner.ID, s.now().UTC())
	if err != nil {
		return booking, err
	}

	s.publish(notify.TableBookings, notify.ActionUpdated, booking)
	return booking, nil
}

func (s *BookingService) Resume(ctx context.Context, cleaner *models.Cleaner, bookingID uuid.UUID) (models.Booking, error) {
	booking, err := s.storage.Booking().Resume(ctx, bookingID, cleaner.ID, s.now().UTC())
	if err != nil {
		return booking, err
	}

	s.publish(notify.TableBookings, notify.ActionUpdated, booking)
	return booking, nil
}

// Complete finishes the job and settles payment in one transaction:
// the guarded status update, exactly one ledger entry for the booking
// amount and the balance credit either all commit or none do.
func (s *BookingService) Complete(ctx context.Context, cleaner *models.Cleaner, bookingID uuid.UUID) (models.Booking, error) {
	var booking models.Booking
	now := s.now().UTC()

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		booking, err = st.Booking().Complete(ctx, bookingID, cleaner.ID, now)
		if err != nil {
			return err
		}

		service, err := st.Service().GetServiceByID(ctx, booking.ServiceID)
		if err != nil {
			return fmt.Errorf("can't resolve booked service. Err: %w", err)
		}

		amount := booking.Amount
		_, err = st.Ledger().CreateEntry(ctx, models.EarningsEntry{
			CleanerID: cleaner.ID,
			BookingID: booking.ID,
			Amount:    &amount,
			Service:   service.Name,
			EarnedAt:  &now,
		})
		if err != nil {
			return err
		}

		_, err = st.Cleaner().Credit(ctx, cleaner.ID, booking.Amount)
		return err
	})
	if err != nil {
		return booking, err
	}

	s.publish(notify.TableBookings, notify.ActionUpdated, booking)
	s.publish(notify.TablePayments, notify.ActionCreated, booking)
	return booking, nil
}

// CurrentOrders lists the work a cleaner sees: every unclaimed pending
// booking plus their own unfinished jobs
func (s *BookingService) CurrentOrders(ctx context.Context, cleaner *models.Cleaner) ([]models.Booking, error) {
	pending, err := s.storage.Booking().ListPending(ctx)
	if err != nil {
		return nil, err
	}

	mine, err := s.storage.Booking().ListByCleaner(ctx, cleaner.ID)
	if err != nil {
		return nil, err
	}

	return MergeCurrentOrders(pending, mine), nil
}

// History lists the cleaner's settled jobs
func (s *BookingService) History(ctx context.Context, cleaner *models.Cleaner) ([]models.Booking, error) {
	mine, err := s.storage.Booking().ListByCleaner(ctx, cleaner.ID)
	if err != nil {
		return nil, err
	}

	return FilterHistory(mine), nil
}

// ListForUser lists a customer's own bookings
func (s *BookingService) ListForUser(ctx context.Context, user *models.User) ([]models.Booking, error) {
	return s.storage.Booking().ListByUser(ctx, user.ID)
}

// ListBookings lists every non-deleted booking
func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.storage.Booking().ListBookings(ctx)
}

func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID) (models.Booking, error) {
	return s.storage.Booking().GetBooking(ctx, bookingID)
}

func (s *BookingService) SoftDelete(ctx context.Context, bookingID uuid.UUID) error {
	err := s.storage.Booking().SoftDeleteBooking(ctx, bookingID, s.now().UTC())
	if err != nil {
		return err
	}

	s.publish(notify.TableBookings, notify.ActionDeleted, bookingID)
	return nil
}

func (s *BookingService) Restore(ctx context.Context, bookingID uuid.UUID) error {
	err := s.storage.Booking().RestoreBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	s.publish(notify.TableBookings, notify.ActionUpdated, bookingID)
	return nil
}

func (s *BookingService) publish(table string, action string, row any) {
	if s.events == nil {
		return
	}
	s.events.Publish(notify.Event{Table: table, Action: action, Row: row})
}

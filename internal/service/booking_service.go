package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maskan/internal/config"
	"maskan/internal/domain"
	"maskan/internal/events"
	"maskan/internal/metrics"
	"maskan/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BookingService drives the booking lifecycle. Every money-touching
// transition runs as one unit of work: the conflict re-check, balance
// mutations, transaction rows and the status write commit together or not
// at all.
type BookingService struct {
	store       domain.Store
	ledger      domain.Ledger
	eventBus    domain.EventPublisher
	limiter     domain.AttemptLimiter
	notifyQueue domain.NotifyQueue
	now         domain.Clock
	cfg         config.BookingConfig
	logger      *zerolog.Logger
}

func NewBookingService(store domain.Store, ledger domain.Ledger, eventBus domain.EventPublisher, limiter domain.AttemptLimiter, notifyQueue domain.NotifyQueue, clock domain.Clock, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	if clock == nil {
		clock = time.Now
	}
	if cfg.MaxBookingDays <= 0 {
		cfg.MaxBookingDays = 365
	}
	if cfg.RateLimitAttempts <= 0 {
		cfg.RateLimitAttempts = models.BookingRateLimitAttempts
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = models.BookingRateLimitWindow
	}
	return &BookingService{
		store:       store,
		ledger:      ledger,
		eventBus:    eventBus,
		limiter:     limiter,
		notifyQueue: notifyQueue,
		now:         clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// ValidateBookingDates rejects stays in the past, stays too far ahead and
// ranges that do not cover at least one night.
func (s *BookingService) ValidateBookingDates(checkIn, checkOut time.Time) error {
	if _, err := StayNights(checkIn, checkOut); err != nil {
		return err
	}

	today := s.today()
	if checkIn.Before(today) {
		return fmt.Errorf("%w: check-in date is in the past", domain.ErrValidation)
	}

	maxDate := today.AddDate(0, 0, s.cfg.MaxBookingDays)
	if checkIn.After(maxDate) {
		return fmt.Errorf("%w: check-in date is more than %d days ahead", domain.ErrValidation, s.cfg.MaxBookingDays)
	}

	return nil
}

// CreateBooking places a new pending booking. Rent moves tenant to owner
// immediately; if the transfer fails the booking is not created.
func (s *BookingService) CreateBooking(ctx context.Context, tenantID, apartmentID int64, checkIn, checkOut time.Time, guests int, paymentMethod string) (*models.Booking, error) {
	if err := s.checkAttemptLimit(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := s.ValidateBookingDates(checkIn, checkOut); err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		paymentMethod = "balance"
	}

	var booking *models.Booking
	var notifications []*models.Notification

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		apartment, err := tx.GetApartment(ctx, apartmentID)
		if err != nil {
			return err
		}
		if !apartment.IsActive() {
			return fmt.Errorf("%w: apartment %d is not available for booking", domain.ErrValidation, apartmentID)
		}
		if apartment.OwnerID == tenantID {
			return fmt.Errorf("%w: cannot book own apartment", domain.ErrGuardViolation)
		}

		conflicts, err := tx.CountConflicts(ctx, apartmentID, checkIn, checkOut, 0)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return domain.ErrConflict
		}

		rent, err := CalculateRent(apartment, checkIn, checkOut)
		if err != nil {
			return err
		}

		booking = &models.Booking{
			TenantID:       tenantID,
			ApartmentID:    apartmentID,
			CheckInDate:    checkIn,
			CheckOutDate:   checkOut,
			NumberOfGuests: guests,
			PaymentMethod:  paymentMethod,
			TotalRent:      rent,
			Status:         models.StatusPending,
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}

		err = s.ledger.Transfer(ctx, tx, tenantID, apartment.OwnerID, rent, booking.ID, models.TxRentPayment,
			fmt.Sprintf("Rent payment for booking #%d", booking.ID),
			fmt.Sprintf("Rent received for booking #%d", booking.ID))
		if err != nil {
			return err
		}

		n := &models.Notification{
			UserID:    apartment.OwnerID,
			BookingID: booking.ID,
			Type:      events.EventBookingCreated,
			Body:      fmt.Sprintf("New booking request #%d for apartment %d", booking.ID, apartmentID),
		}
		if err := tx.InsertNotification(ctx, n); err != nil {
			return err
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, wrapMoneyErr(err)
	}

	metrics.IncBookingTransition(models.StatusPending)
	s.publishEvent(ctx, events.EventBookingCreated, booking, "tenant", tenantID, decimal.Decimal{})
	s.enqueueNotifications(ctx, notifications)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("tenant_id", tenantID).
		Int64("apartment_id", apartmentID).
		Str("total_rent", booking.TotalRent.String()).
		Msg("booking created")

	return booking, nil
}

// ApproveBooking moves a pending booking to approved. No money moves; the
// rent was already transferred at creation.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID, actingOwnerID int64) (*models.Booking, error) {
	var booking *models.Booking
	var notifications []*models.Notification

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		booking, err = s.loadForOwner(ctx, tx, bookingID, actingOwnerID)
		if err != nil {
			return err
		}
		if booking.Status != models.StatusPending {
			return s.invalidState(booking, models.StatusApproved)
		}

		if err := tx.UpdateBookingStatus(ctx, bookingID, models.StatusApproved); err != nil {
			return err
		}
		booking.Status = models.StatusApproved

		n := &models.Notification{
			UserID:    booking.TenantID,
			BookingID: booking.ID,
			Type:      events.EventBookingApproved,
			Body:      fmt.Sprintf("Booking #%d has been approved", booking.ID),
		}
		if err := tx.InsertNotification(ctx, n); err != nil {
			return err
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(models.StatusApproved)
	s.publishEvent(ctx, events.EventBookingApproved, booking, "owner", actingOwnerID, decimal.Decimal{})
	s.enqueueNotifications(ctx, notifications)

	return booking, nil
}

// RejectBooking declines a pending booking and refunds the full rent. The
// refund amount is returned alongside the updated booking.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID, actingOwnerID int64) (*models.Booking, decimal.Decimal, error) {
	var booking *models.Booking
	var notifications []*models.Notification

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		booking, err = s.loadForOwner(ctx, tx, bookingID, actingOwnerID)
		if err != nil {
			return err
		}
		if booking.Status != models.StatusPending {
			return s.invalidState(booking, models.StatusRejected)
		}

		err = s.ledger.Transfer(ctx, tx, actingOwnerID, booking.TenantID, booking.TotalRent, booking.ID, models.TxRefund,
			fmt.Sprintf("Refund for rejected booking #%d", booking.ID),
			fmt.Sprintf("Refund received for rejected booking #%d", booking.ID))
		if err != nil {
			return err
		}

		if err := tx.UpdateBookingStatus(ctx, bookingID, models.StatusRejected); err != nil {
			return err
		}
		booking.Status = models.StatusRejected

		n := &models.Notification{
			UserID:    booking.TenantID,
			BookingID: booking.ID,
			Type:      events.EventBookingRejected,
			Body:      fmt.Sprintf("Booking #%d was rejected, %s refunded", booking.ID, booking.TotalRent),
		}
		if err := tx.InsertNotification(ctx, n); err != nil {
			return err
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, wrapMoneyErr(err)
	}

	metrics.IncBookingTransition(models.StatusRejected)
	s.publishEvent(ctx, events.EventBookingRejected, booking, "owner", actingOwnerID, booking.TotalRent)
	s.enqueueNotifications(ctx, notifications)

	return booking, booking.TotalRent, nil
}

// CancelBooking lets the tenant cancel an active booking at least 24 hours
// before check-in. 80% of the rent comes back to the tenant; the owner
// keeps 20% as the cancellation fee.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actingTenantID int64) (*models.Booking, decimal.Decimal, decimal.Decimal, error) {
	var booking *models.Booking
	var refund, fee decimal.Decimal
	var notifications []*models.Notification

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		booking, err = tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.TenantID != actingTenantID {
			return domain.ErrNotFound
		}
		if !models.IsBlockingStatus(booking.Status) {
			return s.invalidState(booking, models.StatusCancelled)
		}
		if err := s.checkCancellationWindow(booking.CheckInDate); err != nil {
			return err
		}

		apartment, err := tx.GetApartment(ctx, booking.ApartmentID)
		if err != nil {
			return err
		}

		refund, fee, err = s.ledger.SplitRefund(ctx, tx, apartment.OwnerID, booking.TenantID, booking.TotalRent, booking.ID)
		if err != nil {
			return err
		}

		if err := tx.UpdateBookingStatus(ctx, bookingID, models.StatusCancelled); err != nil {
			return err
		}
		booking.Status = models.StatusCancelled

		n := &models.Notification{
			UserID:    apartment.OwnerID,
			BookingID: booking.ID,
			Type:      events.EventBookingCancelled,
			Body:      fmt.Sprintf("Booking #%d was cancelled, fee %s retained", booking.ID, fee),
		}
		if err := tx.InsertNotification(ctx, n); err != nil {
			return err
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, wrapMoneyErr(err)
	}

	metrics.IncBookingTransition(models.StatusCancelled)
	s.publishEvent(ctx, events.EventBookingCancelled, booking, "tenant", actingTenantID, refund)
	s.enqueueNotifications(ctx, notifications)

	return booking, refund, fee, nil
}

// RequestModification moves an approved booking to modified_pending with
// new dates or guest count. A rent increase is paid immediately; a decrease
// is not refunded here, the owner's decision settles it.
func (s *BookingService) RequestModification(ctx context.Context, bookingID, actingTenantID int64, newCheckIn, newCheckOut time.Time, newGuests int) (*models.Booking, error) {
	var booking *models.Booking
	var notifications []*models.Notification

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		booking, err = tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.TenantID != actingTenantID {
			return domain.ErrNotFound
		}
		if booking.Status != models.StatusApproved && booking.Status != models.StatusModifiedApproved {
			return s.invalidState(booking, models.StatusModifiedPending)
		}
		if err := s.checkCancellationWindow(booking.CheckInDate); err != nil {
			return err
		}

		checkIn := booking.CheckInDate
		if !newCheckIn.IsZero() {
			checkIn = newCheckIn
		}
		checkOut := booking.CheckOutDate
		if !newCheckOut.IsZero() {
			checkOut = newCheckOut
		}
		guests := booking.NumberOfGuests
		if newGuests > 0 {
			guests = newGuests
		}

		datesChanged := !checkIn.Equal(booking.CheckInDate) || !checkOut.Equal(booking.CheckOutDate)
		if !datesChanged && guests == booking.NumberOfGuests {
			return fmt.Errorf("%w: no changes submitted", domain.ErrGuardViolation)
		}

		newRent := booking.TotalRent
		if datesChanged {
			if err := s.ValidateBookingDates(checkIn, checkOut); err != nil {
				return err
			}

			conflicts, err := tx.CountConflicts(ctx, booking.ApartmentID, checkIn, checkOut, booking.ID)
			if err != nil {
				return err
			}
			if conflicts > 0 {
				return domain.ErrConflict
			}

			apartment, err := tx.GetApartment(ctx, booking.ApartmentID)
			if err != nil {
				return err
			}
			newRent, err = CalculateRent(apartment, checkIn, checkOut)
			if err != nil {
				return err
			}

			// Pay the increase up front. Decreases are left in place.
			delta := newRent.Sub(booking.TotalRent)
			if delta.IsPositive() {
				err = s.ledger.Transfer(ctx, tx, booking.TenantID, apartment.OwnerID, delta, booking.ID, models.TxRentPayment,
					fmt.Sprintf("Additional rent for modified booking #%d", booking.ID),
					fmt.Sprintf("Additional rent received for modified booking #%d", booking.ID))
				if err != nil {
					return err
				}
			}
		}

		booking.PrevCheckInDate = booking.CheckInDate
		booking.PrevCheckOutDate = booking.CheckOutDate
		booking.PrevTotalRent = booking.TotalRent
		booking.PrevStatus = booking.Status

		booking.CheckInDate = checkIn
		booking.CheckOutDate = checkOut
		booking.NumberOfGuests = guests
		booking.TotalRent = newRent
		booking.Status = models.StatusModifiedPending

		if err := tx.ApplyModification(ctx, booking); err != nil {
			return err
		}

		apartment, err := tx.GetApartment(ctx, booking.ApartmentID)
		if err != nil {
			return err
		}
		n := &models.Notification{
			UserID:    apartment.OwnerID,
			BookingID: booking.ID,
			Type:      events.EventModificationRequest,
			Body:      fmt.Sprintf("Modification requested for booking #%d", booking.ID),
		}
		if err := tx.InsertNotification(ctx, n); err != nil {
			return err
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, wrapMoneyErr(err)
	}

	metrics.IncBookingTransition(models.StatusModifiedPending)
	s.publishEvent(ctx, events.EventModificationRequest, booking, "tenant", actingTenantID, decimal.Decimal{})
	s.enqueueNotifications(ctx, notifications)

	return booking, nil
}

// ApproveModification confirms the requested changes.
func (s *BookingService) ApproveModification(ctx context.Context, bookingID, actingOwnerID int64) (*models.Booking, error) {
	booking, err := s.decideModification(ctx, bookingID, actingOwnerID, models.StatusModifiedApproved, events.EventModificationApproved)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// RejectModification declines the requested changes. The booking returns
// to approved; the modified dates and rent stay as requested.
func (s *BookingService) RejectModification(ctx context.Context, bookingID, actingOwnerID int64) (*models.Booking, error) {
	booking, err := s.decideModification(ctx, bookingID, actingOwnerID, models.StatusApproved, events.EventModificationRejected)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) decideModification(ctx context.Context, bookingID, actingOwnerID int64, targetStatus, eventType string) (*models.Booking, error) {
	var booking *models.Booking
	var notifications []*models.Notification

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		booking, err = s.loadForOwner(ctx, tx, bookingID, actingOwnerID)
		if err != nil {
			return err
		}
		if booking.Status != models.StatusModifiedPending {
			return s.invalidState(booking, targetStatus)
		}

		if err := tx.UpdateBookingStatus(ctx, bookingID, targetStatus); err != nil {
			return err
		}
		booking.Status = targetStatus

		n := &models.Notification{
			UserID:    booking.TenantID,
			BookingID: booking.ID,
			Type:      eventType,
			Body:      fmt.Sprintf("Modification of booking #%d: %s", booking.ID, targetStatus),
		}
		if err := tx.InsertNotification(ctx, n); err != nil {
			return err
		}
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(targetStatus)
	s.publishEvent(ctx, eventType, booking, "owner", actingOwnerID, decimal.Decimal{})
	s.enqueueNotifications(ctx, notifications)

	return booking, nil
}

// CompleteBooking marks a finished stay as completed. Driven by the
// completion sweep, not by user action.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	var booking *models.Booking

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		booking, err = tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != models.StatusApproved && booking.Status != models.StatusModifiedApproved {
			return s.invalidState(booking, models.StatusCompleted)
		}
		if booking.CheckOutDate.After(s.now()) {
			return fmt.Errorf("%w: stay has not ended yet", domain.ErrGuardViolation)
		}

		if err := tx.UpdateBookingStatus(ctx, bookingID, models.StatusCompleted); err != nil {
			return err
		}
		booking.Status = models.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(models.StatusCompleted)
	s.publishEvent(ctx, events.EventBookingCompleted, booking, "system", 0, decimal.Decimal{})

	return booking, nil
}

// CanRate reports whether the tenant may rate the booking: completed stay,
// check-out in the past, no rating yet.
func (s *BookingService) CanRate(ctx context.Context, bookingID, actingTenantID int64) (bool, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking.TenantID != actingTenantID {
		return false, nil
	}
	if booking.Status != models.StatusCompleted {
		return false, nil
	}
	if booking.CheckOutDate.After(s.today()) {
		return false, nil
	}

	var rated bool
	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		rated, err = tx.HasRating(ctx, bookingID)
		return err
	})
	if err != nil {
		return false, err
	}
	return !rated, nil
}

// SubmitRating records a one-time rating for a completed stay.
func (s *BookingService) SubmitRating(ctx context.Context, bookingID, actingTenantID int64, score int, reviewText string) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	var rating *models.Rating

	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		booking, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.TenantID != actingTenantID {
			return domain.ErrNotFound
		}
		if booking.Status != models.StatusCompleted {
			return fmt.Errorf("%w: only completed bookings can be rated", domain.ErrInvalidState)
		}
		if booking.CheckOutDate.After(s.today()) {
			return fmt.Errorf("%w: stay has not ended yet", domain.ErrGuardViolation)
		}

		rated, err := tx.HasRating(ctx, bookingID)
		if err != nil {
			return err
		}
		if rated {
			return fmt.Errorf("%w: booking already rated", domain.ErrGuardViolation)
		}

		rating = &models.Rating{
			BookingID:   bookingID,
			TenantID:    actingTenantID,
			ApartmentID: booking.ApartmentID,
			Rating:      score,
			ReviewText:  reviewText,
		}
		return tx.InsertRating(ctx, rating)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventRatingSubmitted, &models.Booking{ID: bookingID, TenantID: actingTenantID}, "tenant", actingTenantID, decimal.Decimal{})

	return rating, nil
}

// CheckConflict reports whether the date range overlaps a blocking booking.
func (s *BookingService) CheckConflict(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error) {
	if _, err := StayNights(checkIn, checkOut); err != nil {
		return false, err
	}
	return s.store.CheckConflict(ctx, apartmentID, checkIn, checkOut, excludeBookingID)
}

// QuoteRent prices a stay for an apartment without creating anything.
func (s *BookingService) QuoteRent(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time) (decimal.Decimal, error) {
	apartment, err := s.store.GetApartment(ctx, apartmentID)
	if err != nil {
		return decimal.Zero, err
	}
	return CalculateRent(apartment, checkIn, checkOut)
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) ListTenantBookings(ctx context.Context, tenantID int64, group string) ([]*models.Booking, error) {
	return s.store.ListTenantBookings(ctx, tenantID, group)
}

func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID int64, group string) ([]*models.Booking, error) {
	return s.store.ListOwnerBookings(ctx, ownerID, group)
}

func (s *BookingService) loadForOwner(ctx context.Context, tx domain.Tx, bookingID, actingOwnerID int64) (*models.Booking, error) {
	booking, err := tx.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	apartment, err := tx.GetApartment(ctx, booking.ApartmentID)
	if err != nil {
		return nil, err
	}
	if apartment.OwnerID != actingOwnerID {
		// Bookings of other owners' apartments are invisible to the actor.
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *BookingService) checkCancellationWindow(checkIn time.Time) error {
	hours := checkIn.Sub(s.now()).Hours()
	if hours < models.CancellationWindowHours {
		return fmt.Errorf("%w: less than %d hours before check-in", domain.ErrGuardViolation, models.CancellationWindowHours)
	}
	return nil
}

func (s *BookingService) checkAttemptLimit(ctx context.Context, tenantID int64) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.CheckRateLimit(ctx, tenantID, s.cfg.RateLimitAttempts, time.Duration(s.cfg.RateLimitWindow)*time.Second)
	if err != nil {
		// Limiter backend failure must not block bookings.
		s.logger.Warn().Err(err).Int64("tenant_id", tenantID).Msg("rate limiter unavailable")
		return nil
	}
	if !allowed {
		return fmt.Errorf("%w: too many booking attempts, try again later", domain.ErrGuardViolation)
	}
	return nil
}

func (s *BookingService) invalidState(booking *models.Booking, target string) error {
	return fmt.Errorf("%w: cannot move booking %d from %s to %s", domain.ErrInvalidState, booking.ID, booking.Status, target)
}

func (s *BookingService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, booking *models.Booking, changedBy string, changedByID int64, amount decimal.Decimal) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		TenantID:     booking.TenantID,
		ApartmentID:  booking.ApartmentID,
		Status:       booking.Status,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
		TotalRent:    booking.TotalRent,
		Amount:       amount,
		ChangedBy:    changedBy,
		ChangedByID:  changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueNotifications(ctx context.Context, notifications []*models.Notification) {
	if s.notifyQueue == nil {
		return
	}
	for _, n := range notifications {
		if err := s.notifyQueue.EnqueueNotify(ctx, n); err != nil {
			s.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("notify enqueue error")
		}
	}
}

// wrapMoneyErr maps unexpected storage errors from money-touching units of
// work to ErrLedgerFailure. Expected business-rule errors pass through.
func wrapMoneyErr(err error) error {
	if err == nil {
		return nil
	}
	for _, expected := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidState,
		domain.ErrConflict,
		domain.ErrInsufficientFunds,
		domain.ErrGuardViolation,
		domain.ErrValidation,
	} {
		if errors.Is(err, expected) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrLedgerFailure, err)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const bookingColumns = `id, event_id, user_id, status, message, created_at, updated_at`

var errBookingNotFound = apperr.NotFound("booking not found")

// BookingRepository handles persistence for participant records.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.Status, &b.Message, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Request records a join request (none -> requested).
//
// Every capacity-sensitive transition follows the same shape:
//
//	lock the event row with SELECT … FOR UPDATE
//	derive the accepted count in a fresh statement
//	ask the domain package whether the transition is allowed
//	write the booking (and the capacity-derived event status) and commit
//
// Two transactions touching the same event serialise on the row lock, so
// neither can act on a count the other is about to change. The partial
// unique index on (event_id, user_id) backs up the duplicate check.
func (r *BookingRepository) Request(ctx context.Context, eventID, userID, note string, policy domain.RerequestPolicy) (*model.Booking, error) {
	if !validID(eventID) {
		return nil, errEventNotFound
	}

	var booking *model.Booking
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		ev, accepted, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		history, err := collectBookings(tx.Query(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE event_id = $1 AND user_id = $2`,
			eventID, userID,
		))
		if err != nil {
			return fmt.Errorf("load booking history: %w", err)
		}

		if err := domain.CheckJoinRequest(ev, userID, accepted, history, policy); err != nil {
			return err
		}

		b := &model.Booking{
			ID:        uuid.New().String(),
			EventID:   eventID,
			UserID:    userID,
			Status:    model.BookingRequested,
			Message:   note,
			CreatedAt: time.Now().UTC(),
		}
		b.UpdatedAt = b.CreatedAt
		_, err = tx.Exec(ctx,
			`INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			b.ID, b.EventID, b.UserID, b.Status, b.Message, b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			if pgCode(err) == pgUniqueViolation {
				return apperr.ErrDuplicateRequest
			}
			return fmt.Errorf("insert booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("request booking: %w", err)
	}
	return booking, nil
}

// Transition moves a booking to status to on behalf of actorID. Accepting
// re-checks capacity under the event lock, so of two hosts' tabs racing
// for the last slot only one commit succeeds.
func (r *BookingRepository) Transition(ctx context.Context, bookingID, actorID string, to model.BookingStatus) (*model.Booking, error) {
	if !validID(bookingID) {
		return nil, errBookingNotFound
	}

	// event_id never changes, so it can be read before taking any lock;
	// locks are always taken event first, booking second.
	var eventID string
	err := r.db.QueryRow(ctx, `SELECT event_id FROM bookings WHERE id = $1`, bookingID).Scan(&eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}

	var booking *model.Booking
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		ev, accepted, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		b, err := scanBooking(tx.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errBookingNotFound
			}
			return fmt.Errorf("lock booking row: %w", err)
		}

		delta, err := domain.ApplyDecision(ev, b, actorID, to, accepted)
		if err != nil {
			return err
		}

		b.Status = to
		b.UpdatedAt = time.Now().UTC()
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
			b.ID, b.Status, b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		next := domain.CapacityStatus(ev.Status, domain.PlayerCount(accepted+delta), ev.MaxPlayers)
		if next != ev.Status {
			if _, err := tx.Exec(ctx,
				`UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`,
				ev.ID, next, b.UpdatedAt,
			); err != nil {
				return fmt.Errorf("update event status: %w", err)
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("transition booking: %w", err)
	}
	return booking, nil
}

// GetByID returns a single booking.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if !validID(id) {
		return nil, errBookingNotFound
	}
	b, err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListByEvent returns all bookings for an event, oldest first.
func (r *BookingRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error) {
	if !validID(eventID) {
		return nil, nil
	}
	bookings, err := collectBookings(r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE event_id = $1 ORDER BY created_at ASC`, eventID,
	))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ListByUser returns every booking a user has made, oldest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	bookings, err := collectBookings(r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at ASC`, userID,
	))
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

// HasBooking reports whether userID holds any record on eventID.
func (r *BookingRepository) HasBooking(ctx context.Context, eventID, userID string) (bool, error) {
	if !validID(eventID) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check booking: %w", err)
	}
	return ok, nil
}

func collectBookings(rows pgx.Rows, err error) ([]model.Booking, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const messageColumns = `id, event_id, sender_id, receiver_id, content, kind, read_by, created_at`

// MessageRepository persists chat messages. Messages are append-only; the
// read set is the only column ever updated, and only by appending.
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores m and fills in its id and server-assigned timestamp.
func (r *MessageRepository) Append(ctx context.Context, m *model.Message) error {
	if !validID(m.EventID) {
		return errEventNotFound
	}
	m.ID = uuid.New().String()
	if m.ReadBy == nil {
		m.ReadBy = []string{}
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO messages (id, event_id, sender_id, receiver_id, content, kind, read_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		m.ID, m.EventID, m.SenderID, m.ReceiverID, m.Content, m.Kind, m.ReadBy,
	).Scan(&m.CreatedAt)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return errEventNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// List returns the newest q.Limit messages the caller sent or received in
// the event, oldest first.
func (r *MessageRepository) List(ctx context.Context, q model.MessageQuery) ([]model.Message, error) {
	if !validID(q.EventID) {
		return nil, nil
	}

	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE event_id = $1 AND (sender_id = $2 OR receiver_id = $2)`
	args := []any{q.EventID, q.UserID}
	if q.With != "" {
		args = append(args, q.With)
		query += fmt.Sprintf(` AND (sender_id = $%d OR receiver_id = $%[1]d)`, len(args))
	}
	if q.Before != nil {
		args = append(args, *q.Before)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	query += ` ORDER BY seq DESC`
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Message, error) {
		var m model.Message
		err := row.Scan(&m.ID, &m.EventID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Kind, &m.ReadBy, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	slices.Reverse(messages)
	return messages, nil
}

// MarkAllRead adds userID to the read set of every message in the event
// the user did not author. Running it twice changes nothing the second time.
func (r *MessageRepository) MarkAllRead(ctx context.Context, eventID, userID string) (int64, error) {
	if !validID(eventID) {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET read_by = array_append(read_by, $2)
		 WHERE event_id = $1 AND sender_id <> $2 AND NOT ($2 = ANY (read_by))`,
		eventID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread counts messages addressed to userID that they have not read.
func (r *MessageRepository) CountUnread(ctx context.Context, eventID, userID string) (int, error) {
	if !validID(eventID) {
		return 0, nil
	}
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM messages
		 WHERE event_id = $1 AND receiver_id = $2 AND NOT ($2 = ANY (read_by))`,
		eventID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}

// HasSent reports whether userID has authored any message in the event.
func (r *MessageRepository) HasSent(ctx context.Context, eventID, userID string) (bool, error) {
	if !validID(eventID) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM messages WHERE event_id = $1 AND sender_id = $2)`,
		eventID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check sent messages: %w", err)
	}
	return ok, nil
}

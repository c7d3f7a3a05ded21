package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/geo"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

// searchCap bounds one search query. The query applies the radius and the
// ordering the service applies, so the window is the head of the final
// result as long as the service limit stays below it.
const searchCap = 500

// haversineSQL is the great-circle distance in kilometres from the origin
// bound to the two placeholders. NULL for events without coordinates.
const haversineSQL = `(2 * %[3]f * asin(least(1, sqrt(
	power(sin(radians(e.latitude - $%[1]d::float8) / 2), 2) +
	cos(radians($%[1]d::float8)) * cos(radians(e.latitude)) *
	power(sin(radians(e.longitude - $%[2]d::float8) / 2), 2)))))`

const eventColumns = `e.id, e.host_id, e.title, e.description, e.sport, e.skill_level, e.gender_policy,
	e.starts_at, e.ends_at, e.location, e.latitude, e.longitude, e.max_players, e.price_cents,
	e.sport_config, e.status, e.created_at, e.updated_at`

// acceptedCount is a correlated subquery deriving the accepted count.
const acceptedCount = `(SELECT count(*) FROM bookings b WHERE b.event_id = e.id AND b.status = 'accepted')`

var errEventNotFound = apperr.NotFound("event not found")

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row, withCount bool) (*model.Event, error) {
	var e model.Event
	dest := []any{
		&e.ID, &e.HostID, &e.Title, &e.Description, &e.Sport, &e.SkillLevel, &e.GenderPolicy,
		&e.StartsAt, &e.EndsAt, &e.Location, &e.Latitude, &e.Longitude, &e.MaxPlayers, &e.PriceCents,
		&e.SportConfig, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	}
	var accepted int
	if withCount {
		dest = append(dest, &accepted)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.PlayerCount = domain.PlayerCount(accepted)
	return &e, nil
}

// Create inserts a new event and fills in its generated UUID and timestamps.
func (r *EventRepository) Create(ctx context.Context, ev *model.Event) error {
	ev.ID = uuid.New().String()
	ev.CreatedAt = time.Now().UTC()
	ev.UpdatedAt = ev.CreatedAt
	ev.PlayerCount = domain.PlayerCount(0)
	if ev.SportConfig == nil {
		ev.SportConfig = map[string]any{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, host_id, title, description, sport, skill_level, gender_policy,
			starts_at, ends_at, location, latitude, longitude, max_players, price_cents,
			sport_config, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		ev.ID, ev.HostID, ev.Title, ev.Description, ev.Sport, ev.SkillLevel, ev.GenderPolicy,
		ev.StartsAt, ev.EndsAt, ev.Location, ev.Latitude, ev.Longitude, ev.MaxPlayers, ev.PriceCents,
		ev.SportConfig, ev.Status, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event with its derived player count.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, errEventNotFound
	}
	ev, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+`, `+acceptedCount+` FROM events e WHERE e.id = $1`, id,
	), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// lockEvent takes the row lock every capacity-sensitive write goes through
// and then derives the player count in a separate statement, so the count
// is read from a snapshot taken after the lock was granted.
func lockEvent(ctx context.Context, tx pgx.Tx, id string) (*model.Event, int, error) {
	ev, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, id,
	), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, errEventNotFound
		}
		return nil, 0, fmt.Errorf("lock event row: %w", err)
	}

	var accepted int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE event_id = $1 AND status = 'accepted'`, id,
	).Scan(&accepted); err != nil {
		return nil, 0, fmt.Errorf("count accepted bookings: %w", err)
	}
	ev.PlayerCount = domain.PlayerCount(accepted)
	return ev, accepted, nil
}

// Update locks the event row, lets apply mutate a copy that carries the
// current player count, and writes the result in the same transaction.
func (r *EventRepository) Update(ctx context.Context, id string, apply func(ev *model.Event) error) (*model.Event, error) {
	if !validID(id) {
		return nil, errEventNotFound
	}

	var updated *model.Event
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		ev, _, err := lockEvent(ctx, tx, id)
		if err != nil {
			return err
		}
		hostID, createdAt := ev.HostID, ev.CreatedAt
		if err := apply(ev); err != nil {
			return err
		}
		ev.ID, ev.HostID, ev.CreatedAt = id, hostID, createdAt
		ev.UpdatedAt = time.Now().UTC()
		if ev.SportConfig == nil {
			ev.SportConfig = map[string]any{}
		}

		_, err = tx.Exec(ctx,
			`UPDATE events SET title = $2, description = $3, sport = $4, skill_level = $5,
				gender_policy = $6, starts_at = $7, ends_at = $8, location = $9, latitude = $10,
				longitude = $11, max_players = $12, price_cents = $13, sport_config = $14,
				status = $15, updated_at = $16
			 WHERE id = $1`,
			ev.ID, ev.Title, ev.Description, ev.Sport, ev.SkillLevel,
			ev.GenderPolicy, ev.StartsAt, ev.EndsAt, ev.Location, ev.Latitude,
			ev.Longitude, ev.MaxPlayers, ev.PriceCents, ev.SportConfig,
			ev.Status, ev.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		updated = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an event; bookings and messages go with it (ON DELETE CASCADE).
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return errEventNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errEventNotFound
	}
	return nil
}

// Search returns published or full events starting after f.After that
// match the filters. With an origin the radius is applied in SQL and
// sort=distance orders nearest first; otherwise events come in start order.
func (r *EventRepository) Search(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		where = []string{`e.status IN ('published', 'full')`, `e.starts_at > $1`}
		args  = []any{f.After}
	)
	add := func(clause string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		where = append(where, clause)
	}

	if f.Sport != "" {
		add(`e.sport = ?`, f.Sport)
	}
	if f.SkillLevel != "" {
		add(`(e.skill_level = ? OR e.skill_level = 'any')`, f.SkillLevel)
	}
	if f.Gender != "" {
		add(`e.gender_policy = ?`, f.Gender)
	}
	if f.Location != "" {
		add(`e.location ILIKE ?`, "%"+escapeLike(f.Location)+"%")
	}
	if f.MaxPrice != nil {
		add(`e.price_cents <= ?`, *f.MaxPrice)
	}
	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		add(`e.starts_at >= ?`, day)
		add(`e.starts_at < ?`, day.Add(24*time.Hour))
	}

	order := `e.starts_at ASC`
	if f.Lat != nil {
		args = append(args, *f.Lat, *f.Lng)
		distance := fmt.Sprintf(haversineSQL, len(args)-1, len(args), geo.EarthRadiusKm)

		if f.RadiusKm > 0 {
			box := geo.BoundingBox(geo.Point{Lat: *f.Lat, Lng: *f.Lng}, f.RadiusKm)
			add(`e.latitude BETWEEN ? AND ?`, box.MinLat, box.MaxLat)
			switch {
			case box.MinLng <= -180 && box.MaxLng >= 180:
			case box.MinLng > box.MaxLng:
				add(`(e.longitude >= ? OR e.longitude <= ?)`, box.MinLng, box.MaxLng)
			default:
				add(`e.longitude BETWEEN ? AND ?`, box.MinLng, box.MaxLng)
			}
			add(distance+` <= ?`, f.RadiusKm)
		}

		if f.Sort == geo.SortDistance {
			order = distance + ` ASC NULLS LAST, e.starts_at ASC`
		} else {
			order = `e.starts_at ASC, ` + distance + ` ASC NULLS LAST`
		}
	}

	query := `SELECT ` + eventColumns + `, ` + acceptedCount + `
		FROM events e
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + order + `
		LIMIT ` + fmt.Sprint(searchCap)

	return r.query(ctx, query, args...)
}

// ListByHost returns every event hosted by hostID, drafts included.
func (r *EventRepository) ListByHost(ctx context.Context, hostID string) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+`, `+acceptedCount+`
		 FROM events e
		 WHERE e.host_id = $1
		 ORDER BY e.starts_at ASC`,
		hostID,
	)
}

func (r *EventRepository) query(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

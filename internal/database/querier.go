package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSubscriptionNotFound  = errors.New("subscription not found or not owned by the account")
	ErrSubscriptionConfirmed = errors.New("subscription was already confirmed with a different transaction")
	ErrSignatureAlreadyUsed  = errors.New("transaction signature already activated a subscription")
	ErrDuplicateFileID       = errors.New("a file with the same id already exists")
	ErrAccountNotFound       = errors.New("account not found")

	// ErrActiveSubscriptionChanged means another activation won the race for
	// the account between observation and commit.
	ErrActiveSubscriptionChanged = errors.New("active subscription changed during confirmation")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

type Event struct {
	ID        int64           `json:"id"`
	EventType string          `json:"event_type"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload"`
}

// LogEvent appends to the account's event journal and returns the stored
// message so it can be pushed to live listeners unchanged.
func (q *Queries) LogEvent(ctx context.Context, accountID int64, eventType string, payload interface{}) (*Event, error) {
	eventMsg := map[string]interface{}{
		"event_type": eventType,
		"payload":    payload,
	}
	eventBytes, err := json.Marshal(eventMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO event_journal (account_id, event_type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, event_type, event_time, payload
	`
	var event Event
	err = q.db.QueryRow(ctx, query, accountID, eventType, eventBytes).Scan(
		&event.ID,
		&event.EventType,
		&event.EventTime,
		&event.Payload,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (q *Queries) GetEventsSince(ctx context.Context, accountID int64, sinceID int64) ([]Event, error) {
	query := `
		SELECT id, event_type, event_time, payload
		FROM event_journal
		WHERE account_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT 100
	`
	rows, err := q.db.Query(ctx, query, accountID, sinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.EventTime,
			&event.Payload,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		return []Event{}, nil
	}

	return events, nil
}

package telegram

import (
	"context"
	"database/sql"
	"time"
)

// Session holds the rolling conversation recap for one chat. It lets a
// restarted bot keep some memory of what was discussed.
type Session struct {
	ChatID    int64
	Summary   string
	UpdatedAt time.Time
}

// SessionRepository provides access to chat session persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the session for a chat. A missing session yields nil.
func (sr *SessionRepository) Get(ctx context.Context, chatID int64) (*Session, error) {
	row := sr.db.QueryRowContext(ctx,
		`SELECT chat_id, summary, updated_at FROM chat_sessions WHERE chat_id = ?`, chatID)

	var s Session
	if err := row.Scan(&s.ChatID, &s.Summary, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Save upserts the summary for a chat.
func (sr *SessionRepository) Save(ctx context.Context, chatID int64, summary string) error {
	_, err := sr.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (chat_id, summary, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   summary = excluded.summary,
		   updated_at = excluded.updated_at`,
		chatID, summary, time.Now().UTC(),
	)
	return err
}

// Delete removes the session for a chat.
func (sr *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	_, err := sr.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE chat_id = ?`, chatID)
	return err
}

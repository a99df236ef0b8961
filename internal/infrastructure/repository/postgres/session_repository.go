package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateOrTouchSession(ctx context.Context, sessionID, userID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, created_at, last_active)
VALUES ($1, $2, $3, $3)
ON CONFLICT (id, user_id) DO UPDATE SET last_active = EXCLUDED.last_active
`, sessionID, userID, now)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) AppendTurn(ctx context.Context, sessionID, userID string, turn domain.Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	metadata, err := json.Marshal(turn.Metadata)
	if err != nil {
		return fmt.Errorf("marshal turn metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO turns (id, session_id, user_id, role, content, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, uuid.NewString(), sessionID, userID, string(turn.Role), turn.Content, metadata, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (r *SessionRepository) LoadHistory(ctx context.Context, sessionID, userID string, limit int) ([]domain.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT role, content, metadata, created_at
FROM turns
WHERE session_id = $1 AND user_id = $2
ORDER BY created_at DESC
LIMIT $3
`, sessionID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Turn, 0, limit)
	for rows.Next() {
		var (
			turn     domain.Turn
			role     string
			metadata []byte
		)
		if err := rows.Scan(&role, &turn.Content, &metadata, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Role = domain.Role(role)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &turn.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal turn metadata: %w", err)
			}
		}
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	// Returned in descending order from SQL; reverse to keep chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *SessionRepository) LogTokenUsage(ctx context.Context, userID, sessionID, model string, usage domain.TokenUsage) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO usage_log (id, user_id, session_id, model, input_tokens, output_tokens, total_tokens, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, uuid.NewString(), userID, sessionID, model, usage.InputTokens, usage.OutputTokens, usage.TotalTokens, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

func (r *SessionRepository) AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM sessions),
	(SELECT COUNT(*) FROM turns)
`)

	var summary domain.AnalyticsSummary
	if err := row.Scan(&summary.TotalSessions, &summary.TotalTurns); err != nil {
		return domain.AnalyticsSummary{}, fmt.Errorf("scan analytics summary: %w", err)
	}
	return summary, nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

type MemoryRepository struct {
	db *sql.DB
}

func NewMemoryRepository(db *sql.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Load returns the stored profile, or a zero profile for unknown users.
func (r *MemoryRepository) Load(ctx context.Context, userID string) (domain.MemoryProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT master_summary, user_facts
FROM memory_profiles
WHERE user_id = $1
`, userID)

	var (
		profile domain.MemoryProfile
		facts   []byte
	)
	if err := row.Scan(&profile.MasterSummary, &facts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MemoryProfile{}, nil
		}
		return domain.MemoryProfile{}, fmt.Errorf("load memory profile: %w", err)
	}
	if len(facts) > 0 {
		if err := json.Unmarshal(facts, &profile.UserFacts); err != nil {
			return domain.MemoryProfile{}, fmt.Errorf("unmarshal user facts: %w", err)
		}
	}
	return profile, nil
}

// Save overwrites the whole profile. Concurrent writers race last-write-wins.
func (r *MemoryRepository) Save(ctx context.Context, userID string, profile domain.MemoryProfile) error {
	facts := profile.UserFacts
	if facts == nil {
		facts = map[string]string{}
	}
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("marshal user facts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO memory_profiles (user_id, master_summary, user_facts, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id) DO UPDATE SET
	master_summary = EXCLUDED.master_summary,
	user_facts = EXCLUDED.user_facts,
	updated_at = EXCLUDED.updated_at
`, userID, profile.MasterSummary, factsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save memory profile: %w", err)
	}
	return nil
}

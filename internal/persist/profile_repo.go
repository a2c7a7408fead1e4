package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

// ProfileRepo is the Postgres Store.
type ProfileRepo struct {
	db *DB
}

func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Load(ctx context.Context, playerID string) (game.Profile, error) {
	var p game.Profile
	err := r.db.Pool.QueryRow(ctx,
		`SELECT player_id, high_score, owned_characters, selected_character,
		        pending_rewards, updated_at
		 FROM profiles WHERE player_id = $1`, playerID,
	).Scan(&p.PlayerID, &p.HighScore, &p.OwnedCharacters, &p.SelectedCharacter,
		&p.PendingRewards, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return game.Profile{}, fmt.Errorf("load profile %s: %w", playerID, err)
	}
	return p, nil
}

// Save upserts the profile. The stored high score never decreases.
func (r *ProfileRepo) Save(ctx context.Context, p game.Profile) error {
	owned := p.OwnedCharacters
	if owned == nil {
		owned = []string{}
	}
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO profiles (player_id, high_score, owned_characters, selected_character, pending_rewards, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (player_id) DO UPDATE SET
		     high_score         = GREATEST(profiles.high_score, EXCLUDED.high_score),
		     owned_characters   = EXCLUDED.owned_characters,
		     selected_character = EXCLUDED.selected_character,
		     pending_rewards    = EXCLUDED.pending_rewards,
		     updated_at         = NOW()`,
		p.PlayerID, p.HighScore, owned, p.SelectedCharacter, p.PendingRewards,
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.PlayerID, err)
	}
	return nil
}

func (r *ProfileRepo) TopScores(ctx context.Context, n int) ([]game.Profile, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT player_id, high_score, owned_characters, selected_character,
		        pending_rewards, updated_at
		 FROM profiles ORDER BY high_score DESC, player_id LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var out []game.Profile
	for rows.Next() {
		var p game.Profile
		if err := rows.Scan(&p.PlayerID, &p.HighScore, &p.OwnedCharacters, &p.SelectedCharacter,
			&p.PendingRewards, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

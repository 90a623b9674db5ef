// internal/database/players.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/models"
)

const playerColumns = `id, session_id, device_id, nickname, score, joined_at`

// CreatePlayer inserts a new player row.
func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	q := `INSERT INTO players (id, session_id, device_id, nickname, score, joined_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, q, p.ID, p.SessionID, p.DeviceID, p.Nickname, p.Score, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// GetPlayer fetches a player by id.
func (s *Store) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	var p models.Player
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.SessionID, &p.DeviceID, &p.Nickname, &p.Score, &p.JoinedAt)
	if err != nil {
		return nil, notFound(err, "player %s not found", id)
	}
	return &p, nil
}

// GetPlayerByDevice fetches the player a device maps to in a session.
func (s *Store) GetPlayerByDevice(ctx context.Context, sessionID uuid.UUID, deviceID string) (*models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM players WHERE session_id = $1 AND device_id = $2`
	var p models.Player
	err := s.pool.QueryRow(ctx, q, sessionID, deviceID).Scan(&p.ID, &p.SessionID, &p.DeviceID, &p.Nickname, &p.Score, &p.JoinedAt)
	if err != nil {
		return nil, notFound(err, "player for device not found")
	}
	return &p, nil
}

// ListPlayers returns a session's players ordered by join time. Join
// order doubles as the leaderboard tie-break, so the ordering here is
// load-bearing.
func (s *Store) ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM players WHERE session_id = $1 ORDER BY joined_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.SessionID, &p.DeviceID, &p.Nickname, &p.Score, &p.JoinedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpdatePlayerNickname renames a player.
func (s *Store) UpdatePlayerNickname(ctx context.Context, id uuid.UUID, nickname string) error {
	q := `UPDATE players SET nickname = $1 WHERE id = $2`
	tag, err := s.pool.Exec(ctx, q, nickname, id)
	if err != nil {
		return fmt.Errorf("update player nickname: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.NewError(game.KindNotFound, "player %s not found", id)
	}
	return nil
}

// DeletePlayer removes a player and (via cascade) their answers.
func (s *Store) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.NewError(game.KindNotFound, "player %s not found", id)
	}
	return nil
}

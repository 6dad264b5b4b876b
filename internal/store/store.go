// Package store persists sequence state to SQLite. Saves are whole-state
// snapshots inside a transaction: the scene and asset tables are rewritten in
// order, so a load always reconstructs the exact edit-order the user last saw.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storyreel/storyreel-agent/internal/assets"
	"github.com/storyreel/storyreel-agent/internal/sequence"
)

const settingsRowID = "default"

type Repository interface {
	LoadSequence(ctx context.Context) (*sequence.Sequence, error)
	SaveSequence(ctx context.Context, seq *sequence.Sequence) error

	LoadAssets(ctx context.Context) (*assets.Set, error)
	SaveAssets(ctx context.Context, set *assets.Set) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// LoadSequence reconstructs the persisted sequence. A fresh database returns
// nil rather than an empty sequence so the caller can seed defaults.
func (r *SQLiteRepository) LoadSequence(ctx context.Context) (*sequence.Sequence, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, fps, width, height, active_scene_id
		FROM sequence_settings WHERE id = ?
	`, settingsRowID)

	seq := &sequence.Sequence{}
	err := row.Scan(&seq.Name, &seq.FPS, &seq.Width, &seq.Height, &seq.ActiveID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sequence settings: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, duration, image, image_history,
		       shot_type, aspect_ratio, quality, dialogue, speech_prompt,
		       music_mood, asset_ids, created_at
		FROM scenes ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load scenes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc sequence.Scene
		var history, assetIDs, createdAt string
		if err := rows.Scan(&sc.ID, &sc.Title, &sc.Description, &sc.Duration,
			&sc.Image, &history, &sc.ShotType, &sc.AspectRatio, &sc.Quality,
			&sc.Dialogue, &sc.SpeechPrompt, &sc.MusicMood, &assetIDs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		if err := json.Unmarshal([]byte(history), &sc.ImageHistory); err != nil {
			return nil, fmt.Errorf("decode image history for scene %s: %w", sc.ID, err)
		}
		if err := json.Unmarshal([]byte(assetIDs), &sc.AssignedAssetIDs); err != nil {
			return nil, fmt.Errorf("decode asset ids for scene %s: %w", sc.ID, err)
		}
		sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		seq.Scenes = append(seq.Scenes, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Drop a dangling active pointer rather than failing the load.
	if seq.ActiveID != "" && seq.Scene(seq.ActiveID) == nil {
		seq.ActiveID = ""
	}
	return seq, nil
}

// SaveSequence rewrites the full sequence state in one transaction.
func (r *SQLiteRepository) SaveSequence(ctx context.Context, seq *sequence.Sequence) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sequence_settings (id, name, fps, width, height, active_scene_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			fps = excluded.fps,
			width = excluded.width,
			height = excluded.height,
			active_scene_id = excluded.active_scene_id,
			updated_at = excluded.updated_at
	`, settingsRowID, seq.Name, seq.FPS, seq.Width, seq.Height, seq.ActiveID)
	if err != nil {
		return fmt.Errorf("save sequence settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM scenes"); err != nil {
		return fmt.Errorf("clear scenes: %w", err)
	}

	for pos, sc := range seq.Scenes {
		history, err := json.Marshal(sc.ImageHistory)
		if err != nil {
			return fmt.Errorf("encode image history for scene %s: %w", sc.ID, err)
		}
		assetIDs, err := json.Marshal(sc.AssignedAssetIDs)
		if err != nil {
			return fmt.Errorf("encode asset ids for scene %s: %w", sc.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenes (id, position, title, description, duration, image,
				image_history, shot_type, aspect_ratio, quality, dialogue,
				speech_prompt, music_mood, asset_ids, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sc.ID, pos, sc.Title, sc.Description, sc.Duration, sc.Image,
			string(history), sc.ShotType, sc.AspectRatio, sc.Quality, sc.Dialogue,
			sc.SpeechPrompt, sc.MusicMood, string(assetIDs), sc.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("save scene %s: %w", sc.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAssets reconstructs the asset set in creation order.
func (r *SQLiteRepository) LoadAssets(ctx context.Context) (*assets.Set, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, name, description, trigger_word, image, aspect_ratio
		FROM assets ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	defer rows.Close()

	set := assets.NewSet()
	for rows.Next() {
		var a assets.Asset
		if err := rows.Scan(&a.ID, &a.Type, &a.Name, &a.Description,
			&a.TriggerWord, &a.Image, &a.AspectRatio); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		set.Put(&a)
	}
	return set, rows.Err()
}

// SaveAssets rewrites the full asset table in one transaction.
func (r *SQLiteRepository) SaveAssets(ctx context.Context, set *assets.Set) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assets"); err != nil {
		return fmt.Errorf("clear assets: %w", err)
	}

	for pos, a := range set.All() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, position, type, name, description, trigger_word, image, aspect_ratio)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, pos, a.Type, a.Name, a.Description, a.TriggerWord, a.Image, a.AspectRatio)
		if err != nil {
			return fmt.Errorf("save asset %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM agent_config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO agent_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	return err
}

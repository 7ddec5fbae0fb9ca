package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notivo/models"
)

// Notes owns the note lifecycle. Ordering is this store's responsibility;
// filtering is not (see the search package).
type Notes struct {
	db *sql.DB
}

func NewNotes(db *sql.DB) *Notes {
	return &Notes{db: db}
}

// List returns all notes owned by userID, pinned notes first, then by
// updated_at descending within each group. An empty result is not an error.
func (n *Notes) List(ctx context.Context, userID int) ([]models.Note, error) {
	rows, err := n.db.QueryContext(ctx,
		"SELECT id, user_id, title, content, is_pinned, updated_at FROM notes WHERE user_id = ? ORDER BY is_pinned DESC, updated_at DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating note rows: %w", err)
	}
	return notes, nil
}

// Create inserts a new unpinned note with updated_at set to now. The user id
// is not checked against the users table; the caller supplies an
// authenticated id. Insert and fetch are two separate statements, so a
// concurrent delete of the fresh row surfaces here as a fetch error.
func (n *Notes) Create(ctx context.Context, userID int, title, content string) (*models.Note, error) {
	now := time.Now().UTC().Format(timeLayout)
	res, err := n.db.ExecContext(ctx,
		"INSERT INTO notes (user_id, title, content, updated_at) VALUES (?, ?, ?, ?)",
		userID, title, content, now)
	if err != nil {
		return nil, fmt.Errorf("inserting note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading note id: %w", err)
	}

	row := n.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, content, is_pinned, updated_at FROM notes WHERE id = ?", id)
	note, err := scanNote(row)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Update overwrites title and content and bumps updated_at. A missing id is
// a silent no-op: the statement succeeds having changed nothing.
func (n *Notes) Update(ctx context.Context, id int, title, content string) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := n.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?",
		title, content, now, id)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	return nil
}

// SetPinned sets the pin flag without touching updated_at. Pinning and
// editing are independent axes. A missing id is a silent no-op.
func (n *Notes) SetPinned(ctx context.Context, id int, pinned bool) error {
	flag := 0
	if pinned {
		flag = 1
	}
	_, err := n.db.ExecContext(ctx, "UPDATE notes SET is_pinned = ? WHERE id = ?", flag, id)
	if err != nil {
		return fmt.Errorf("pinning note: %w", err)
	}
	return nil
}

// Delete removes the note if present. Idempotent: deleting a missing or
// already-deleted id succeeds.
func (n *Notes) Delete(ctx context.Context, id int) error {
	_, err := n.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (models.Note, error) {
	var note models.Note
	var pinned int
	var updatedAt string

	if err := s.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &pinned, &updatedAt); err != nil {
		return models.Note{}, fmt.Errorf("scanning note: %w", err)
	}

	note.IsPinned = pinned != 0
	ts, err := time.Parse(timeLayout, updatedAt)
	if err != nil {
		// Rows written by the schema default carry no fractional seconds.
		ts, err = time.Parse("2006-01-02 15:04:05", updatedAt)
		if err != nil {
			return models.Note{}, fmt.Errorf("parsing updated_at: %w", err)
		}
	}
	note.UpdatedAt = ts
	return note, nil
}

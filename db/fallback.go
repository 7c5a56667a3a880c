// ABOUTME: Database operations for the fallback log
// ABOUTME: Records content that could not be delivered to a platform
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/models"
)

func CreateFallbackEntry(db *sql.DB, entry *models.FallbackEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO fallback_log (
			id, post_id, platform, content, error, error_kind,
			recipient, notified, notify_error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID.String(), entry.PostID, entry.Platform, entry.Content, entry.Error, entry.ErrorKind,
		entry.Recipient, entry.Notified, entry.NotifyError, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fallback entry: %w", err)
	}
	return nil
}

// MarkFallbackNotified records the outcome of the notification attempt.
func MarkFallbackNotified(db *sql.DB, id uuid.UUID, recipient string, notifyErr error) error {
	var msg string
	if notifyErr != nil {
		msg = notifyErr.Error()
	}

	_, err := db.Exec(`
		UPDATE fallback_log SET notified = ?, notify_error = ?, recipient = ? WHERE id = ?
	`, notifyErr == nil, msg, recipient, id.String())
	return err
}

// ListFallbackEntries returns the newest entries first.
func ListFallbackEntries(db *sql.DB, limit int) ([]models.FallbackEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, post_id, platform, content, error, error_kind,
		       recipient, notified, notify_error, created_at
		FROM fallback_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.FallbackEntry
	for rows.Next() {
		var e models.FallbackEntry
		var id string
		var postID, recipient, notifyErr sql.NullString
		if err := rows.Scan(&id, &postID, &e.Platform, &e.Content, &e.Error, &e.ErrorKind,
			&recipient, &e.Notified, &notifyErr, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ID, _ = uuid.Parse(id)
		e.PostID = postID.String
		e.Recipient = recipient.String
		e.NotifyError = notifyErr.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

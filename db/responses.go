// ABOUTME: Database operations for auto-responses and processed mentions
// ABOUTME: Backs the responder's approval queue and its once-per-mention guarantee
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/amplify/models"
)

const responseColumns = `id, mention_id, platform, author, keyword, category, text, status, error, created_at, decided_at`

func scanResponse(row rowScanner) (*models.Response, error) {
	var r models.Response
	var author, errMsg sql.NullString

	err := row.Scan(&r.ID, &r.MentionID, &r.Platform, &author, &r.Keyword, &r.Category, &r.Text,
		&r.Status, &errMsg, &r.CreatedAt, &r.DecidedAt)
	if err != nil {
		return nil, err
	}
	r.Author = author.String
	r.Error = errMsg.String
	return &r, nil
}

func CreateResponse(db *sql.DB, resp *models.Response) error {
	if resp.ID == "" {
		resp.ID = NewID()
	}
	if resp.Status == "" {
		resp.Status = models.ResponsePending
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO responses (`+responseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, resp.ID, resp.MentionID, resp.Platform, resp.Author, resp.Keyword, resp.Category, resp.Text,
		resp.Status, resp.Error, resp.CreatedAt, resp.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}
	return nil
}

func GetResponse(db *sql.DB, id string) (*models.Response, error) {
	resp, err := scanResponse(db.QueryRow(`SELECT `+responseColumns+` FROM responses WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListResponses returns responses newest first, optionally filtered by status.
func ListResponses(db *sql.DB, status string, limit int) ([]models.Response, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + responseColumns + ` FROM responses`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var responses []models.Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *r)
	}
	return responses, rows.Err()
}

// DecideResponse moves a pending response to a final status.
func DecideResponse(db *sql.DB, id, status, errMsg string) error {
	result, err := db.Exec(`
		UPDATE responses SET status = ?, error = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`, status, errMsg, time.Now().UTC(), id, models.ResponsePending)
	if err != nil {
		return fmt.Errorf("failed to update response: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no pending response with id %s", id)
	}
	return nil
}

// UpdateResponseText replaces the reply of a response still awaiting
// approval.
func UpdateResponseText(db *sql.DB, id, text string) error {
	result, err := db.Exec(`UPDATE responses SET text = ? WHERE id = ? AND status = ?`,
		text, id, models.ResponsePending)
	if err != nil {
		return fmt.Errorf("failed to update response text: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no pending response with id %s", id)
	}
	return nil
}

// ResponseTimesSince lists creation times of non-rejected responses. The
// responder seeds its hourly limiter from this on startup.
func ResponseTimesSince(db *sql.DB, since time.Time) ([]time.Time, error) {
	rows, err := db.Query(`
		SELECT created_at FROM responses WHERE created_at >= ? AND status != ?
		ORDER BY created_at ASC
	`, since.UTC(), models.ResponseRejected)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func MarkMentionProcessed(db *sql.DB, platform, mentionID string) error {
	_, err := db.Exec(`
		INSERT INTO processed_mentions (platform, mention_id, processed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(platform, mention_id) DO NOTHING
	`, platform, mentionID, time.Now().UTC())
	return err
}

func IsMentionProcessed(db *sql.DB, platform, mentionID string) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM processed_mentions WHERE platform = ? AND mention_id = ?
	`, platform, mentionID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

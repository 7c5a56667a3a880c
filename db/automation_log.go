// ABOUTME: Database operations for the automation fire log
// ABOUTME: Guarantees each rule fires at most once per contact and dedup key
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AutomationFire is one row of the automation log.
type AutomationFire struct {
	RuleName  string
	ContactID string
	DedupKey  string
	PostID    string
	FiredAt   time.Time
}

// RecordAutomationFire claims (rule, contact, key). It returns false without
// error when the combination was already recorded.
func RecordAutomationFire(db *sql.DB, ruleName, contactID, dedupKey, postID string) (bool, error) {
	result, err := db.Exec(`
		INSERT INTO automation_log (id, rule_name, contact_id, dedup_key, post_id, fired_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_name, contact_id, dedup_key) DO NOTHING
	`, uuid.New().String(), ruleName, contactID, dedupKey, postID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to record automation fire: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// HasAutomationFired reports whether (rule, contact, key) was already recorded.
func HasAutomationFired(db *sql.DB, ruleName, contactID, dedupKey string) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM automation_log
		WHERE rule_name = ? AND contact_id = ? AND dedup_key = ?
	`, ruleName, contactID, dedupKey).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAutomationFires returns recent fires, newest first.
func ListAutomationFires(db *sql.DB, limit int) ([]AutomationFire, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT rule_name, contact_id, dedup_key, post_id, fired_at
		FROM automation_log
		ORDER BY fired_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var fires []AutomationFire
	for rows.Next() {
		var f AutomationFire
		var postID sql.NullString
		if err := rows.Scan(&f.RuleName, &f.ContactID, &f.DedupKey, &postID, &f.FiredAt); err != nil {
			return nil, err
		}
		f.PostID = postID.String
		fires = append(fires, f)
	}
	return fires, rows.Err()
}

// CountAutomationFires counts fires per rule at or after since.
func CountAutomationFires(db *sql.DB, since time.Time) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT rule_name, COUNT(*) FROM automation_log
		WHERE fired_at >= ?
		GROUP BY rule_name
	`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var rule string
		var n int
		if err := rows.Scan(&rule, &n); err != nil {
			return nil, err
		}
		counts[rule] = n
	}
	return counts, rows.Err()
}

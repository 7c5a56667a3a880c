// ABOUTME: Database operations for posts and per-platform delivery results
// ABOUTME: Stores post content as JSON and tracks publish status over time
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/amplify/models"
	"github.com/oklog/ulid/v2"
)

// NewID returns a time-sortable identifier for posts, dispatches and responses.
func NewID() string {
	return ulid.Make().String()
}

const postColumns = `id, content, platforms, ai_generated, source, rule_name, status, scheduled_at, created_at, published_at`

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var content, platforms string
	var ruleName sql.NullString

	err := row.Scan(&p.ID, &content, &platforms, &p.AIGenerated, &p.Source, &ruleName,
		&p.Status, &p.ScheduledAt, &p.CreatedAt, &p.PublishedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(content), &p.Content); err != nil {
		return nil, fmt.Errorf("failed to decode post content: %w", err)
	}
	if err := json.Unmarshal([]byte(platforms), &p.Platforms); err != nil {
		return nil, fmt.Errorf("failed to decode post platforms: %w", err)
	}
	p.RuleName = ruleName.String

	return &p, nil
}

func CreatePost(db *sql.DB, post *models.Post) error {
	if strings.TrimSpace(post.Content.Text) == "" {
		return fmt.Errorf("post text is required")
	}
	if len(post.Platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	for _, p := range post.Platforms {
		if err := models.ValidatePlatform(p); err != nil {
			return err
		}
	}

	if post.ID == "" {
		post.ID = NewID()
	}
	if post.Source == "" {
		post.Source = models.SourceComposer
	}
	if post.Status == "" {
		post.Status = models.PostStatusDraft
		if post.ScheduledAt != nil {
			post.Status = models.PostStatusScheduled
		}
	}
	if post.ScheduledAt != nil {
		utc := post.ScheduledAt.UTC()
		post.ScheduledAt = &utc
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	content, err := json.Marshal(post.Content)
	if err != nil {
		return fmt.Errorf("failed to encode post content: %w", err)
	}
	platforms, err := json.Marshal(post.Platforms)
	if err != nil {
		return fmt.Errorf("failed to encode post platforms: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, post.ID, string(content), string(platforms), post.AIGenerated, post.Source, post.RuleName,
		post.Status, post.ScheduledAt, post.CreatedAt, post.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

func GetPost(db *sql.DB, id string) (*models.Post, error) {
	post, err := scanPost(db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns posts newest first, optionally filtered by status.
func ListPosts(db *sql.DB, status string, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	return posts, rows.Err()
}

// ListDueScheduledPosts returns scheduled posts whose time has come, oldest first.
func ListDueScheduledPosts(db *sql.DB, now time.Time) ([]models.Post, error) {
	rows, err := db.Query(`
		SELECT `+postColumns+` FROM posts
		WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		ORDER BY scheduled_at ASC
	`, models.PostStatusScheduled, now.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	return posts, rows.Err()
}

// UpdatePostStatus sets the status; published_at is stamped for published and partial.
func UpdatePostStatus(db *sql.DB, id, status string) error {
	var publishedAt *time.Time
	if status == models.PostStatusPublished || status == models.PostStatusPartial {
		now := time.Now().UTC()
		publishedAt = &now
	}

	result, err := db.Exec(`
		UPDATE posts SET status = ?, published_at = COALESCE(?, published_at) WHERE id = ?
	`, status, publishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

func SavePostResult(db *sql.DB, result *models.PostResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO post_results (
			post_id, platform, success, remote_id, url, error, error_kind,
			attempts, fallback_logged, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.PostID, result.Platform, result.Success, result.RemoteID, result.URL, result.Error,
		result.ErrorKind, result.Attempts, result.FallbackLogged, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save post result: %w", err)
	}
	return nil
}

func ListPostResults(db *sql.DB, postID string) ([]models.PostResult, error) {
	rows, err := db.Query(`
		SELECT post_id, platform, success, remote_id, url, error, error_kind,
		       attempts, fallback_logged, created_at
		FROM post_results
		WHERE post_id = ?
		ORDER BY id ASC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.PostResult
	for rows.Next() {
		var r models.PostResult
		var remoteID, url, errMsg, errKind sql.NullString
		if err := rows.Scan(&r.PostID, &r.Platform, &r.Success, &remoteID, &url, &errMsg, &errKind,
			&r.Attempts, &r.FallbackLogged, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.RemoteID = remoteID.String
		r.URL = url.String
		r.Error = errMsg.String
		r.ErrorKind = errKind.String
		results = append(results, r)
	}

	return results, rows.Err()
}

// PostStats counts posts by status.
func PostStats(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// PlatformTally counts delivery outcomes for one platform.
type PlatformTally struct {
	Delivered int
	Failed    int
	Fallbacks int
}

// PlatformResultStats tallies post_results per platform.
func PlatformResultStats(db *sql.DB) (map[string]PlatformTally, error) {
	rows, err := db.Query(`
		SELECT platform,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END),
		       SUM(CASE WHEN success THEN 0 ELSE 1 END),
		       SUM(CASE WHEN fallback_logged THEN 1 ELSE 0 END)
		FROM post_results
		GROUP BY platform
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := make(map[string]PlatformTally)
	for rows.Next() {
		var platform string
		var t PlatformTally
		if err := rows.Scan(&platform, &t.Delivered, &t.Failed, &t.Fallbacks); err != nil {
			return nil, err
		}
		stats[platform] = t
	}
	return stats, rows.Err()
}

// ABOUTME: Database operations for platform credentials
// ABOUTME: Stores one access token and account id per social platform
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/amplify/models"
)

// SaveCredential inserts or replaces the credential for a platform.
func SaveCredential(db *sql.DB, cred *models.PlatformCredential) error {
	if err := models.ValidatePlatform(cred.Platform); err != nil {
		return err
	}
	if cred.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	cred.UpdatedAt = time.Now().UTC()

	_, err := db.Exec(`
		INSERT INTO platform_credentials (platform, access_token, account_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(platform) DO UPDATE SET
			access_token = excluded.access_token,
			account_id = excluded.account_id,
			updated_at = excluded.updated_at
	`, cred.Platform, cred.AccessToken, cred.AccountID, cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func GetCredential(db *sql.DB, platform string) (*models.PlatformCredential, error) {
	var cred models.PlatformCredential
	var accountID sql.NullString

	err := db.QueryRow(`
		SELECT platform, access_token, account_id, updated_at
		FROM platform_credentials WHERE platform = ?
	`, platform).Scan(&cred.Platform, &cred.AccessToken, &accountID, &cred.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	cred.AccountID = accountID.String

	return &cred, nil
}

func ListCredentials(db *sql.DB) ([]models.PlatformCredential, error) {
	rows, err := db.Query(`
		SELECT platform, access_token, account_id, updated_at
		FROM platform_credentials ORDER BY platform
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var creds []models.PlatformCredential
	for rows.Next() {
		var cred models.PlatformCredential
		var accountID sql.NullString
		if err := rows.Scan(&cred.Platform, &cred.AccessToken, &accountID, &cred.UpdatedAt); err != nil {
			return nil, err
		}
		cred.AccountID = accountID.String
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func DeleteCredential(db *sql.DB, platform string) error {
	_, err := db.Exec(`DELETE FROM platform_credentials WHERE platform = ?`, platform)
	return err
}

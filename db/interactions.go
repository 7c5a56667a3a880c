// ABOUTME: Database operations for interactions and follow-up tracking
// ABOUTME: Handles interaction logging, contact cadence, and follow-up queries
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/models"
)

const defaultCadenceDays = 30

// CreateContactCadence creates or updates a contact's follow-up cadence.
func CreateContactCadence(db *sql.DB, cadence *models.ContactCadence) error {
	query := `
		INSERT INTO contact_cadence (
			contact_id, cadence_days, relationship_strength,
			priority_score, last_interaction_date, next_followup_date
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(contact_id) DO UPDATE SET
			cadence_days = excluded.cadence_days,
			relationship_strength = excluded.relationship_strength,
			priority_score = excluded.priority_score,
			last_interaction_date = excluded.last_interaction_date,
			next_followup_date = excluded.next_followup_date
	`

	_, err := db.Exec(query,
		cadence.ContactID.String(),
		cadence.CadenceDays,
		cadence.RelationshipStrength,
		cadence.PriorityScore,
		cadence.LastInteractionDate,
		cadence.NextFollowupDate,
	)
	return err
}

// GetContactCadence retrieves cadence info for a contact.
func GetContactCadence(db *sql.DB, contactID uuid.UUID) (*models.ContactCadence, error) {
	query := `
		SELECT contact_id, cadence_days, relationship_strength,
		       priority_score, last_interaction_date, next_followup_date
		FROM contact_cadence
		WHERE contact_id = ?
	`

	cadence := &models.ContactCadence{}
	var contactIDStr string
	err := db.QueryRow(query, contactID.String()).Scan(
		&contactIDStr,
		&cadence.CadenceDays,
		&cadence.RelationshipStrength,
		&cadence.PriorityScore,
		&cadence.LastInteractionDate,
		&cadence.NextFollowupDate,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cadence.ContactID, err = uuid.Parse(contactIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact ID: %w", err)
	}

	return cadence, nil
}

// GetFollowupList returns contacts needing follow-up, sorted by priority.
func GetFollowupList(db *sql.DB, limit int) ([]models.FollowupContact, error) {
	query := `
		SELECT
			c.id, c.name, c.email, c.phone, c.company, c.category, c.notes,
			c.last_contacted_at, c.created_at, c.updated_at,
			cc.cadence_days, cc.relationship_strength, cc.priority_score,
			cc.next_followup_date,
			CAST((julianday('now') - julianday(cc.last_interaction_date)) AS INTEGER) as days_since
		FROM contacts c
		INNER JOIN contact_cadence cc ON c.id = cc.contact_id
		WHERE cc.priority_score > 0
		ORDER BY cc.priority_score DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var followups []models.FollowupContact
	for rows.Next() {
		var f models.FollowupContact
		var idStr string
		var email, phone, company, notes sql.NullString
		err := rows.Scan(
			&idStr, &f.Name, &email, &phone, &company, &f.Category, &notes,
			&f.LastContactedAt, &f.CreatedAt, &f.UpdatedAt,
			&f.CadenceDays, &f.RelationshipStrength, &f.PriorityScore,
			&f.NextFollowupDate, &f.DaysSinceContact,
		)
		if err != nil {
			return nil, err
		}

		f.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse contact ID: %w", err)
		}
		f.Email = email.String
		f.Phone = phone.String
		f.Company = company.String
		f.Notes = notes.String

		followups = append(followups, f)
	}

	return followups, rows.Err()
}

// RefreshPriorityScores recomputes priority for every cadence row. Scores
// drift as days pass, so the daemon calls this before reading follow-ups.
func RefreshPriorityScores(db *sql.DB) error {
	rows, err := db.Query(`
		SELECT contact_id, cadence_days, relationship_strength, last_interaction_date
		FROM contact_cadence
	`)
	if err != nil {
		return err
	}

	var cadences []models.ContactCadence
	for rows.Next() {
		var c models.ContactCadence
		var idStr string
		if err := rows.Scan(&idStr, &c.CadenceDays, &c.RelationshipStrength, &c.LastInteractionDate); err != nil {
			_ = rows.Close()
			return err
		}
		c.ContactID, err = uuid.Parse(idStr)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to parse contact ID: %w", err)
		}
		cadences = append(cadences, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, c := range cadences {
		if _, err := db.Exec(`UPDATE contact_cadence SET priority_score = ? WHERE contact_id = ?`,
			c.ComputePriorityScore(), c.ContactID.String()); err != nil {
			return fmt.Errorf("failed to update priority score: %w", err)
		}
	}

	return nil
}

// UpdateCadenceAfterInteraction updates cadence when interaction is logged.
func UpdateCadenceAfterInteraction(db *sql.DB, contactID uuid.UUID, timestamp time.Time) error {
	cadence, err := GetContactCadence(db, contactID)
	if err != nil {
		return err
	}

	if cadence == nil {
		cadence = &models.ContactCadence{
			ContactID:            contactID,
			CadenceDays:          defaultCadenceDays,
			RelationshipStrength: models.StrengthMedium,
		}
	}

	// Backfilled interactions must not move the cadence backwards
	if cadence.LastInteractionDate != nil && cadence.LastInteractionDate.After(timestamp) {
		return nil
	}

	cadence.LastInteractionDate = &timestamp
	cadence.UpdateNextFollowup()
	cadence.PriorityScore = cadence.ComputePriorityScore()

	return CreateContactCadence(db, cadence)
}

// SetContactCadence sets or updates a contact's cadence settings.
func SetContactCadence(db *sql.DB, contactID uuid.UUID, days int, strength string) error {
	cadence, err := GetContactCadence(db, contactID)
	if err != nil {
		return err
	}

	if cadence == nil {
		cadence = &models.ContactCadence{
			ContactID: contactID,
		}
	}

	cadence.CadenceDays = days
	cadence.RelationshipStrength = strength
	cadence.PriorityScore = cadence.ComputePriorityScore()
	cadence.UpdateNextFollowup()

	return CreateContactCadence(db, cadence)
}

// LogInteraction records a new interaction and updates contact cadence.
func LogInteraction(db *sql.DB, interaction *models.Interaction) error {
	interactionType, err := models.NormalizeInteractionType(interaction.Type)
	if err != nil {
		return err
	}
	interaction.Type = interactionType

	if interaction.Sentiment != nil {
		if err := models.ValidateSentiment(*interaction.Sentiment); err != nil {
			return err
		}
	}

	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}
	interaction.Timestamp = interaction.Timestamp.UTC()

	_, err = db.Exec(`
		INSERT INTO interactions (id, contact_id, type, notes, sentiment, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		interaction.ID.String(),
		interaction.ContactID.String(),
		interaction.Type,
		interaction.Notes,
		interaction.Sentiment,
		interaction.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	_, err = db.Exec(`
		UPDATE contacts SET last_contacted_at = ?
		WHERE id = ? AND (last_contacted_at IS NULL OR last_contacted_at < ?)
	`, interaction.Timestamp, interaction.ContactID.String(), interaction.Timestamp)
	if err != nil {
		return err
	}

	return UpdateCadenceAfterInteraction(db, interaction.ContactID, interaction.Timestamp)
}

const interactionColumns = `id, contact_id, type, notes, sentiment, timestamp`

func scanInteractions(rows *sql.Rows) ([]models.Interaction, error) {
	defer func() {
		_ = rows.Close()
	}()

	var interactions []models.Interaction
	for rows.Next() {
		var i models.Interaction
		var id, contactID string
		var notes sql.NullString
		if err := rows.Scan(&id, &contactID, &i.Type, &notes, &i.Sentiment, &i.Timestamp); err != nil {
			return nil, err
		}
		i.ID, _ = uuid.Parse(id)
		i.ContactID, _ = uuid.Parse(contactID)
		i.Notes = notes.String
		interactions = append(interactions, i)
	}

	return interactions, rows.Err()
}

// GetInteractionHistory retrieves interaction history for a contact, newest first.
func GetInteractionHistory(db *sql.DB, contactID uuid.UUID, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE contact_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, contactID.String(), limit)
	if err != nil {
		return nil, err
	}

	return scanInteractions(rows)
}

// GetInteractionsSince gets all interactions at or after since, across all contacts.
func GetInteractionsSince(db *sql.DB, since time.Time) ([]models.Interaction, error) {
	rows, err := db.Query(`
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
	`, since.UTC())
	if err != nil {
		return nil, err
	}

	return scanInteractions(rows)
}

// ListAllInteractions returns the full interaction log, newest first.
func ListAllInteractions(db *sql.DB) ([]models.Interaction, error) {
	rows, err := db.Query(`SELECT ` + interactionColumns + ` FROM interactions ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}

	return scanInteractions(rows)
}

// LatestInteractionByContact maps each contact to its most recent interaction.
func LatestInteractionByContact(db *sql.DB) (map[uuid.UUID]models.Interaction, error) {
	all, err := ListAllInteractions(db)
	if err != nil {
		return nil, err
	}

	latest := make(map[uuid.UUID]models.Interaction)
	for _, i := range all {
		if _, seen := latest[i.ContactID]; !seen {
			latest[i.ContactID] = i
		}
	}
	return latest, nil
}

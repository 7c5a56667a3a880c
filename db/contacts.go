// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD operations, contact lookups, and the welcome-posted flag
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/models"
)

const contactColumns = `id, name, email, phone, company, category, birthday, work_anniversary,
	notes, welcome_posted, last_contacted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var id string
	var email, phone, company, notes sql.NullString

	err := row.Scan(
		&id,
		&c.Name,
		&email,
		&phone,
		&company,
		&c.Category,
		&c.Birthday,
		&c.WorkAnniversary,
		&notes,
		&c.WelcomePosted,
		&c.LastContactedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact ID: %w", err)
	}
	c.Email = email.String
	c.Phone = phone.String
	c.Company = company.String
	c.Notes = notes.String

	return &c, nil
}

func CreateContact(db *sql.DB, contact *models.Contact) error {
	category, err := models.NormalizeCategory(contact.Category)
	if err != nil {
		return err
	}
	contact.Category = category

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	_, err = db.Exec(`
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), contact.Name, contact.Email, contact.Phone, contact.Company, contact.Category,
		contact.Birthday, contact.WorkAnniversary, contact.Notes, contact.WelcomePosted,
		contact.LastContactedAt, contact.CreatedAt, contact.UpdatedAt)

	return err
}

func GetContact(db *sql.DB, id uuid.UUID) (*models.Contact, error) {
	contact, err := scanContact(db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// ContactFilter narrows FindContacts results. Zero values match everything.
type ContactFilter struct {
	Query    string
	Company  string
	Category string
	Limit    int
}

func FindContacts(db *sql.DB, filter ContactFilter) ([]models.Contact, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var where []string
	var args []any

	if filter.Query != "" {
		searchPattern := "%" + strings.ToLower(filter.Query) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		args = append(args, searchPattern, searchPattern)
	}
	if filter.Company != "" {
		where = append(where, "LOWER(company) = ?")
		args = append(args, strings.ToLower(filter.Company))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}

	return contacts, rows.Err()
}

// ListAllContacts returns every contact, oldest first.
func ListAllContacts(db *sql.DB) ([]models.Contact, error) {
	rows, err := db.Query(`SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}

	return contacts, rows.Err()
}

func UpdateContact(db *sql.DB, id uuid.UUID, updates *models.Contact) error {
	category, err := models.NormalizeCategory(updates.Category)
	if err != nil {
		return err
	}
	updates.Category = category
	updates.UpdatedAt = time.Now()

	_, err = db.Exec(`
		UPDATE contacts
		SET name = ?, email = ?, phone = ?, company = ?, category = ?, birthday = ?,
		    work_anniversary = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, updates.Name, updates.Email, updates.Phone, updates.Company, updates.Category, updates.Birthday,
		updates.WorkAnniversary, updates.Notes, updates.UpdatedAt, id.String())

	return err
}

// MarkWelcomePosted sets the flag that keeps the welcome rule from firing twice.
func MarkWelcomePosted(db *sql.DB, id uuid.UUID) error {
	_, err := db.Exec(`UPDATE contacts SET welcome_posted = 1, updated_at = ? WHERE id = ?`, time.Now(), id.String())
	return err
}

func DeleteContact(db *sql.DB, id uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.Exec(`DELETE FROM interactions WHERE contact_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete interactions: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM contact_cadence WHERE contact_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete cadence: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM contacts WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	return tx.Commit()
}

func UpdateContactLastContacted(db *sql.DB, contactID uuid.UUID, timestamp time.Time) error {
	_, err := db.Exec(`
		UPDATE contacts
		SET last_contacted_at = ?, updated_at = ?
		WHERE id = ?
	`, timestamp, time.Now(), contactID.String())

	return err
}

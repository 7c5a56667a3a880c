// ABOUTME: Google Contacts API importer
// ABOUTME: Imports People API connections with birthdays and organizations, deduplicated by email
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/models"
	"google.golang.org/api/people/v1"
)

const (
	contactsService = "contacts"
	personFields    = "names,emailAddresses,phoneNumbers,organizations,biographies,birthdays"

	// noYear stands in for birthdays saved without a year. It is a leap
	// year so Feb 29 survives.
	noYear = 4
)

type ContactsImporter struct {
	db      *sql.DB
	matcher *ContactMatcher
}

type GoogleContact struct {
	ResourceName string
	Name         string
	Email        string
	Phone        string
	Company      string
	JobTitle     string
	Notes        string
	Birthday     *time.Time
}

// ContactStats summarises one import.
type ContactStats struct {
	Fetched int
	Created int
	Updated int
	Skipped int
	Failed  int
}

// NewContactsImporter loads every existing contact into the matcher once.
func NewContactsImporter(database *sql.DB) (*ContactsImporter, error) {
	all, err := db.ListAllContacts(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing contacts: %w", err)
	}
	return &ContactsImporter{db: database, matcher: NewContactMatcher(all)}, nil
}

// ImportContact creates or fills in one contact. It reports whether a new
// contact was created.
func (ci *ContactsImporter) ImportContact(gc *GoogleContact) (bool, error) {
	if existing, found := ci.matcher.FindMatch(gc.Email); found {
		if err := ci.updateContact(existing, gc); err != nil {
			return false, err
		}
		if err := ci.logSync(gc.ResourceName, existing.ID); err != nil {
			return false, fmt.Errorf("failed to log sync: %w", err)
		}
		return false, nil
	}

	contact := &models.Contact{
		Name:     gc.Name,
		Email:    gc.Email,
		Phone:    gc.Phone,
		Company:  gc.Company,
		Notes:    gc.Notes,
		Birthday: gc.Birthday,
		Category: models.CategoryProfessional,
	}
	if err := db.CreateContact(ci.db, contact); err != nil {
		return false, fmt.Errorf("failed to create contact: %w", err)
	}
	if err := ci.logSync(gc.ResourceName, contact.ID); err != nil {
		return false, fmt.Errorf("failed to log sync: %w", err)
	}

	ci.matcher.AddContact(contact)
	return true, nil
}

// updateContact only fills fields that are empty locally.
func (ci *ContactsImporter) updateContact(existing *models.Contact, gc *GoogleContact) error {
	fresh, err := db.GetContact(ci.db, existing.ID)
	if err != nil {
		return fmt.Errorf("failed to load contact: %w", err)
	}
	if fresh == nil {
		return fmt.Errorf("contact %s disappeared during import", existing.ID)
	}

	updated := false
	if gc.Phone != "" && fresh.Phone == "" {
		fresh.Phone = gc.Phone
		updated = true
	}
	if gc.Notes != "" && fresh.Notes == "" {
		fresh.Notes = gc.Notes
		updated = true
	}
	if gc.Company != "" && fresh.Company == "" {
		fresh.Company = gc.Company
		updated = true
	}
	if gc.Birthday != nil && fresh.Birthday == nil {
		fresh.Birthday = gc.Birthday
		updated = true
	}
	if !updated {
		return nil
	}

	if err := db.UpdateContact(ci.db, fresh.ID, fresh); err != nil {
		return err
	}
	ci.matcher.AddContact(fresh)
	return nil
}

func (ci *ContactsImporter) logSync(sourceID string, entityID uuid.UUID) error {
	return db.CreateSyncLog(ci.db, uuid.New().String(), contactsService, sourceID, "contact", entityID.String(), "")
}

// ImportContacts pages through the user's connections and imports each one
// that has both a name and an email.
func ImportContacts(ctx context.Context, database *sql.DB, client *people.Service) (*ContactStats, error) {
	if err := db.UpdateSyncStatus(database, contactsService, models.SyncStatusSyncing, nil); err != nil {
		return nil, fmt.Errorf("failed to update sync status: %w", err)
	}

	fail := func(err error) (*ContactStats, error) {
		msg := err.Error()
		_ = db.UpdateSyncStatus(database, contactsService, models.SyncStatusError, &msg)
		return nil, err
	}

	importer, err := NewContactsImporter(database)
	if err != nil {
		return fail(err)
	}

	stats := &ContactStats{}
	pageToken := ""
	for {
		call := client.People.Connections.List("people/me").
			PageSize(1000).
			PersonFields(personFields).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Do()
		if err != nil {
			return fail(fmt.Errorf("failed to fetch contacts: %w", err))
		}
		if response == nil {
			break
		}
		stats.Fetched += len(response.Connections)

		for _, person := range response.Connections {
			gc := convertPerson(person)
			if gc.Email == "" || gc.Name == "" {
				stats.Skipped++
				continue
			}

			exists, err := db.CheckSyncLogExists(database, contactsService, person.ResourceName)
			if err != nil {
				return fail(err)
			}
			if exists {
				stats.Skipped++
				continue
			}

			created, err := importer.ImportContact(gc)
			if err != nil {
				stats.Failed++
				logging.Warn("failed to import contact", "name", gc.Name, "error", err)
				continue
			}
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
		logging.Debug("contacts page imported", "fetched", stats.Fetched, "created", stats.Created)
	}

	if err := db.UpdateSyncStatus(database, contactsService, models.SyncStatusIdle, nil); err != nil {
		return nil, fmt.Errorf("failed to update sync status: %w", err)
	}
	logging.Info("contacts imported", "fetched", stats.Fetched, "created", stats.Created, "updated", stats.Updated)
	return stats, nil
}

// convertPerson converts a People API Person to GoogleContact.
func convertPerson(person *people.Person) *GoogleContact {
	gc := &GoogleContact{ResourceName: person.ResourceName}

	if len(person.Names) > 0 {
		gc.Name = person.Names[0].DisplayName
	}

	// Prefer the primary value, otherwise the first one.
	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if gc.Email == "" {
			gc.Email = email.Value
		}
		if email.Metadata != nil && email.Metadata.Primary {
			gc.Email = email.Value
			break
		}
	}
	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		if gc.Phone == "" {
			gc.Phone = phone.Value
		}
		if phone.Metadata != nil && phone.Metadata.Primary {
			gc.Phone = phone.Value
			break
		}
	}

	if len(person.Organizations) > 0 {
		gc.Company = person.Organizations[0].Name
		gc.JobTitle = person.Organizations[0].Title
	}
	if len(person.Biographies) > 0 {
		gc.Notes = person.Biographies[0].Value
	}

	for _, b := range person.Birthdays {
		if d := birthdayDate(b.Date); d != nil {
			gc.Birthday = d
			break
		}
	}

	return gc
}

func birthdayDate(d *people.Date) *time.Time {
	if d == nil || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return nil
	}
	year := int(d.Year)
	if year == 0 {
		year = noYear
	}
	t := time.Date(year, time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
	if t.Day() != int(d.Day) {
		return nil
	}
	return &t
}

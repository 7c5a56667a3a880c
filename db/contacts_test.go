// ABOUTME: Tests for contact and interaction database operations
// ABOUTME: Covers CRUD, category validation, cascading delete, and cadence updates
package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, InitSchema(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateAndGetContact(t *testing.T) {
	db := setupTestDB(t)

	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	contact := &models.Contact{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Company:  "Analytical Engines",
		Category: models.CategoryClient,
		Birthday: &birthday,
	}
	require.NoError(t, CreateContact(db, contact))
	assert.NotEqual(t, uuid.Nil, contact.ID)

	got, err := GetContact(db, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, models.CategoryClient, got.Category)
	assert.False(t, got.WelcomePosted)
	require.NotNil(t, got.Birthday)
	assert.Equal(t, time.March, got.Birthday.Month())
	assert.Equal(t, 14, got.Birthday.Day())
	assert.Nil(t, got.WorkAnniversary)
}

func TestCreateContactDefaultsCategory(t *testing.T) {
	db := setupTestDB(t)

	contact := &models.Contact{Name: "No Category"}
	require.NoError(t, CreateContact(db, contact))
	assert.Equal(t, models.CategoryProfessional, contact.Category)
}

func TestCreateContactRejectsUnknownCategory(t *testing.T) {
	db := setupTestDB(t)

	err := CreateContact(db, &models.Contact{Name: "Bad", Category: "enemy"})
	assert.Error(t, err)
}

func TestGetContactNotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := GetContact(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindContacts(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, CreateContact(db, &models.Contact{Name: "Grace Hopper", Email: "grace@navy.mil", Category: models.CategoryClient}))
	require.NoError(t, CreateContact(db, &models.Contact{Name: "Alan Turing", Email: "alan@bletchley.uk", Company: "Bletchley"}))
	require.NoError(t, CreateContact(db, &models.Contact{Name: "Grace Kelly", Category: models.CategoryPersonal}))

	results, err := FindContacts(db, ContactFilter{Query: "grace"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = FindContacts(db, ContactFilter{Query: "grace", Category: models.CategoryClient})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Grace Hopper", results[0].Name)

	results, err = FindContacts(db, ContactFilter{Company: "bletchley"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alan Turing", results[0].Name)

	results, err = FindContacts(db, ContactFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestUpdateContactAndWelcomeFlag(t *testing.T) {
	db := setupTestDB(t)

	contact := &models.Contact{Name: "Original"}
	require.NoError(t, CreateContact(db, contact))

	anniversary := time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)
	contact.Name = "Renamed"
	contact.Category = models.CategoryVendor
	contact.WorkAnniversary = &anniversary
	require.NoError(t, UpdateContact(db, contact.ID, contact))
	require.NoError(t, MarkWelcomePosted(db, contact.ID))

	got, err := GetContact(db, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, models.CategoryVendor, got.Category)
	assert.True(t, got.WelcomePosted)
	require.NotNil(t, got.WorkAnniversary)
	assert.Equal(t, 2019, got.WorkAnniversary.Year())
}

func TestDeleteContactRemovesInteractions(t *testing.T) {
	db := setupTestDB(t)

	contact := &models.Contact{Name: "Short Lived"}
	require.NoError(t, CreateContact(db, contact))
	require.NoError(t, LogInteraction(db, &models.Interaction{ContactID: contact.ID, Type: models.InteractionCall}))

	require.NoError(t, DeleteContact(db, contact.ID))

	got, err := GetContact(db, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	history, err := GetInteractionHistory(db, contact.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	cadence, err := GetContactCadence(db, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, cadence)
}

func TestLogInteractionUpdatesContactAndCadence(t *testing.T) {
	db := setupTestDB(t)

	contact := &models.Contact{Name: "Busy Person"}
	require.NoError(t, CreateContact(db, contact))

	positive := models.SentimentPositive
	when := time.Now().Add(-2 * time.Hour).UTC()
	interaction := &models.Interaction{
		ContactID: contact.ID,
		Type:      models.InteractionMeeting,
		Notes:     "Quarterly review",
		Sentiment: &positive,
		Timestamp: when,
	}
	require.NoError(t, LogInteraction(db, interaction))

	got, err := GetContact(db, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContactedAt)
	assert.WithinDuration(t, when, *got.LastContactedAt, time.Second)

	cadence, err := GetContactCadence(db, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, cadence)
	assert.Equal(t, 30, cadence.CadenceDays)
	require.NotNil(t, cadence.NextFollowupDate)

	history, err := GetInteractionHistory(db, contact.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Quarterly review", history[0].Notes)
	require.NotNil(t, history[0].Sentiment)
	assert.Equal(t, models.SentimentPositive, *history[0].Sentiment)
}

func TestLogInteractionRejectsBadSentiment(t *testing.T) {
	db := setupTestDB(t)

	contact := &models.Contact{Name: "Moody"}
	require.NoError(t, CreateContact(db, contact))

	bad := "ecstatic"
	err := LogInteraction(db, &models.Interaction{ContactID: contact.ID, Sentiment: &bad})
	assert.Error(t, err)
}

func TestLatestInteractionByContact(t *testing.T) {
	db := setupTestDB(t)

	a := &models.Contact{Name: "A"}
	b := &models.Contact{Name: "B"}
	require.NoError(t, CreateContact(db, a))
	require.NoError(t, CreateContact(db, b))

	now := time.Now().UTC()
	older := &models.Interaction{ContactID: a.ID, Type: models.InteractionEmail, Timestamp: now.Add(-48 * time.Hour)}
	newer := &models.Interaction{ContactID: a.ID, Type: models.InteractionCall, Timestamp: now.Add(-1 * time.Hour)}
	other := &models.Interaction{ContactID: b.ID, Type: models.InteractionOther, Timestamp: now.Add(-10 * 24 * time.Hour)}
	for _, i := range []*models.Interaction{older, newer, other} {
		require.NoError(t, LogInteraction(db, i))
	}

	latest, err := LatestInteractionByContact(db)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest[a.ID].ID)
	assert.Equal(t, other.ID, latest[b.ID].ID)

	recent, err := GetInteractionsSince(db, now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestFollowupListOrdersByPriority(t *testing.T) {
	db := setupTestDB(t)

	overdue := &models.Contact{Name: "Overdue"}
	fresh := &models.Contact{Name: "Fresh"}
	require.NoError(t, CreateContact(db, overdue))
	require.NoError(t, CreateContact(db, fresh))

	require.NoError(t, LogInteraction(db, &models.Interaction{ContactID: overdue.ID, Timestamp: time.Now().AddDate(0, 0, -60)}))
	require.NoError(t, LogInteraction(db, &models.Interaction{ContactID: fresh.ID, Timestamp: time.Now()}))

	followups, err := GetFollowupList(db, 10)
	require.NoError(t, err)
	require.Len(t, followups, 1)
	assert.Equal(t, "Overdue", followups[0].Name)
	assert.GreaterOrEqual(t, followups[0].DaysSinceContact, 59)
}

// ABOUTME: Calendar event importer from Google Calendar API
// ABOUTME: Turns multi-attendee meetings into meeting interactions with known contacts
package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/models"
)

const (
	calendarService = "calendar"
	maxResults      = 250 // Google Calendar API max per page
	lookbackMonths  = 6
)

// CalendarStats summarises one calendar import.
type CalendarStats struct {
	Events       int
	Skipped      map[string]int
	Interactions int
	Unmatched    int
}

// shouldSkipEvent returns (true, reason) for events that are not meetings
// with other people.
func shouldSkipEvent(event *calendar.Event) (bool, string) {
	if event == nil {
		return true, "nil event"
	}
	if event.Start == nil {
		return true, "missing start time"
	}
	if event.Start.Date != "" {
		return true, "all-day event"
	}
	if event.Status == "cancelled" {
		return true, "cancelled"
	}
	for _, attendee := range event.Attendees {
		if attendee.Self && attendee.ResponseStatus == "declined" {
			return true, "declined"
		}
	}
	if n := len(event.Attendees); n <= 1 {
		return true, fmt.Sprintf("solo event (%d attendee%s)", n, pluralize(n))
	}
	return false, ""
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

type calendarImporter struct {
	db        *sql.DB
	matcher   *ContactMatcher
	userEmail string
	stats     *CalendarStats
}

// importEvent logs one meeting interaction per matched attendee. The sync
// log key is event id plus contact id so re-syncs never double count.
func (ci *calendarImporter) importEvent(event *calendar.Event) error {
	start, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", event.Start.DateTime, err)
	}

	for _, attendee := range event.Attendees {
		if attendee.Self || normalizeEmail(attendee.Email) == normalizeEmail(ci.userEmail) {
			continue
		}
		contact, ok := ci.matcher.FindMatch(attendee.Email)
		if !ok {
			ci.stats.Unmatched++
			continue
		}

		sourceID := event.Id + ":" + contact.ID.String()
		exists, err := db.CheckSyncLogExists(ci.db, calendarService, sourceID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		interaction := &models.Interaction{
			ContactID: contact.ID,
			Type:      models.InteractionMeeting,
			Notes:     event.Summary,
			Timestamp: start,
		}
		if err := db.LogInteraction(ci.db, interaction); err != nil {
			return err
		}
		if err := db.CreateSyncLog(ci.db, uuid.New().String(), calendarService, sourceID, "interaction", interaction.ID.String(), event.HtmlLink); err != nil {
			return err
		}
		ci.stats.Interactions++
	}
	return nil
}

// ImportCalendar fetches events from the primary calendar. The first run,
// or any run with initial set, covers the last six months; later runs use
// the stored sync token.
func ImportCalendar(ctx context.Context, database *sql.DB, client *calendar.Service, initial bool) (*CalendarStats, error) {
	if err := db.UpdateSyncStatus(database, calendarService, models.SyncStatusSyncing, nil); err != nil {
		return nil, fmt.Errorf("failed to update sync status: %w", err)
	}

	fail := func(err error) (*CalendarStats, error) {
		msg := err.Error()
		_ = db.UpdateSyncStatus(database, calendarService, models.SyncStatusError, &msg)
		return nil, err
	}

	calendarInfo, err := client.CalendarList.Get("primary").Context(ctx).Do()
	if err != nil {
		return fail(fmt.Errorf("failed to get user calendar info: %w", err))
	}

	contacts, err := db.ListAllContacts(database)
	if err != nil {
		return fail(fmt.Errorf("failed to load existing contacts: %w", err))
	}

	state, err := db.GetSyncState(database, calendarService)
	if err != nil {
		return fail(fmt.Errorf("failed to get sync state: %w", err))
	}

	importer := &calendarImporter{
		db:        database,
		matcher:   NewContactMatcher(contacts),
		userEmail: calendarInfo.Id,
		stats:     &CalendarStats{Skipped: make(map[string]int)},
	}

	newCall := func(since time.Time) *calendar.EventsListCall {
		return client.Events.List("primary").
			MaxResults(maxResults).
			SingleEvents(true).
			TimeMin(since.Format(time.RFC3339)).
			Context(ctx)
	}

	var call *calendar.EventsListCall
	if !initial && state != nil && state.LastSyncToken != nil {
		// Sync tokens cannot be combined with timeMin or orderBy.
		call = client.Events.List("primary").
			MaxResults(maxResults).
			SingleEvents(true).
			SyncToken(*state.LastSyncToken).
			Context(ctx)
	} else {
		call = newCall(time.Now().AddDate(0, -lookbackMonths, 0))
	}

	pageToken := ""
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusGone {
			logging.Warn("calendar sync token expired, falling back to time-based sync")
			since := time.Now().AddDate(0, -lookbackMonths, 0)
			if state != nil && state.LastSyncTime != nil {
				since = *state.LastSyncTime
			}
			call = newCall(since)
			pageToken = ""
			events, err = call.Do()
		}
		if err != nil {
			return fail(fmt.Errorf("failed to fetch calendar events: %w", err))
		}

		importer.stats.Events += len(events.Items)
		for _, event := range events.Items {
			if skip, reason := shouldSkipEvent(event); skip {
				importer.stats.Skipped[reason]++
				continue
			}
			if err := importer.importEvent(event); err != nil {
				logging.Warn("failed to import event", "event", event.Id, "error", err)
				importer.stats.Skipped["invalid"]++
			}
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			if events.NextSyncToken != "" {
				if err := db.UpdateSyncToken(database, calendarService, events.NextSyncToken); err != nil {
					return fail(fmt.Errorf("failed to update sync token: %w", err))
				}
			}
			break
		}
	}

	if err := db.UpdateSyncStatus(database, calendarService, models.SyncStatusIdle, nil); err != nil {
		return nil, fmt.Errorf("failed to update sync status: %w", err)
	}
	logging.Info("calendar imported", "events", importer.stats.Events, "interactions", importer.stats.Interactions)
	return importer.stats, nil
}

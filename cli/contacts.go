// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts and logging interactions
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

// resolveContact accepts a full contact ID or the short prefix printed by
// list-contacts.
func resolveContact(database *sql.DB, ref string) (*models.Contact, error) {
	if id, err := uuid.Parse(ref); err == nil {
		contact, err := db.GetContact(database, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get contact: %w", err)
		}
		if contact == nil {
			return nil, fmt.Errorf("contact not found: %s", ref)
		}
		return contact, nil
	}

	if len(ref) < 4 {
		return nil, fmt.Errorf("invalid contact ID: %s", ref)
	}

	all, err := db.ListAllContacts(database)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	var match *models.Contact
	for i := range all {
		if strings.HasPrefix(all[i].ID.String(), strings.ToLower(ref)) {
			if match != nil {
				return nil, fmt.Errorf("contact ID prefix %s is ambiguous", ref)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("contact not found: %s", ref)
	}
	return match, nil
}

// AddContactCommand adds a new contact.
func AddContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	category := fs.String("category", "", "personal, professional, client or vendor")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD)")
	anniversary := fs.String("anniversary", "", "Work anniversary (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	birthdayDate, err := models.ParseDate(*birthday)
	if err != nil {
		return fmt.Errorf("invalid --birthday: %w", err)
	}
	anniversaryDate, err := models.ParseDate(*anniversary)
	if err != nil {
		return fmt.Errorf("invalid --anniversary: %w", err)
	}

	contact := &models.Contact{
		Name:            *name,
		Email:           *email,
		Phone:           *phone,
		Company:         *company,
		Category:        *category,
		Birthday:        birthdayDate,
		WorkAnniversary: anniversaryDate,
		Notes:           *notes,
	}

	if err := db.CreateContact(database, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	fmt.Printf("  Category: %s\n", contact.Category)
	if contact.Email != "" {
		fmt.Printf("  Email: %s\n", contact.Email)
	}
	if contact.Phone != "" {
		fmt.Printf("  Phone: %s\n", contact.Phone)
	}
	if contact.Company != "" {
		fmt.Printf("  Company: %s\n", contact.Company)
	}

	return nil
}

// ListContactsCommand lists contacts.
func ListContactsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	query := fs.String("query", "", "Search by name or email")
	company := fs.String("company", "", "Filter by company name")
	category := fs.String("category", "", "Filter by category")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	contacts, err := db.FindContacts(database, db.ContactFilter{
		Query:    *query,
		Company:  *company,
		Category: *category,
		Limit:    *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tCOMPANY\tCATEGORY\tLAST CONTACT\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-------\t--------\t------------\t--")

	for _, contact := range contacts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			contact.Name,
			orDash(contact.Email),
			orDash(contact.Company),
			contact.Category,
			orDash(formatDay(contact.LastContactedAt)),
			contact.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// UpdateContactCommand updates an existing contact.
func UpdateContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	category := fs.String("category", "", "personal, professional, client or vendor")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD)")
	anniversary := fs.String("anniversary", "", "Work anniversary (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	// First positional arg is the contact ID
	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}

	existing, err := resolveContact(database, fs.Arg(0))
	if err != nil {
		return err
	}

	// Apply updates from flags
	if *name != "" {
		existing.Name = *name
	}
	if *email != "" {
		existing.Email = *email
	}
	if *phone != "" {
		existing.Phone = *phone
	}
	if *company != "" {
		existing.Company = *company
	}
	if *category != "" {
		existing.Category = *category
	}
	if *notes != "" {
		existing.Notes = *notes
	}
	if *birthday != "" {
		if existing.Birthday, err = models.ParseDate(*birthday); err != nil {
			return fmt.Errorf("invalid --birthday: %w", err)
		}
	}
	if *anniversary != "" {
		if existing.WorkAnniversary, err = models.ParseDate(*anniversary); err != nil {
			return fmt.Errorf("invalid --anniversary: %w", err)
		}
	}

	if err := db.UpdateContact(database, existing.ID, existing); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	fmt.Printf("✓ Contact updated: %s (ID: %s)\n", existing.Name, existing.ID)
	return nil
}

// DeleteContactCommand deletes a contact.
func DeleteContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}

	contact, err := resolveContact(database, fs.Arg(0))
	if err != nil {
		return err
	}

	if err := db.DeleteContact(database, contact.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	fmt.Printf("✓ Contact deleted: %s (%s)\n", contact.Name, contact.ID)
	return nil
}

// LogInteractionCommand records an interaction with a contact.
func LogInteractionCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("log-interaction", flag.ExitOnError)
	kind := fs.String("type", models.InteractionOther, "call, email, meeting or other")
	notes := fs.String("notes", "", "What happened")
	sentiment := fs.String("sentiment", "", "positive, neutral or negative")
	when := fs.String("date", "", "When it happened (YYYY-MM-DD, default now)")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}

	contact, err := resolveContact(database, fs.Arg(0))
	if err != nil {
		return err
	}

	interaction := &models.Interaction{
		ContactID: contact.ID,
		Type:      *kind,
		Notes:     *notes,
		Timestamp: time.Now(),
	}
	if *sentiment != "" {
		interaction.Sentiment = sentiment
	}
	if *when != "" {
		day, err := models.ParseDate(*when)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		interaction.Timestamp = *day
	}

	if err := db.LogInteraction(database, interaction); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}

	fmt.Printf("✓ Logged %s with %s on %s\n", interaction.Type, contact.Name, interaction.Timestamp.Format(models.DateLayout))
	return nil
}

// ListInteractionsCommand shows a contact's interaction history.
func ListInteractionsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-interactions", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum results")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}

	contact, err := resolveContact(database, fs.Arg(0))
	if err != nil {
		return err
	}

	interactions, err := db.GetInteractionHistory(database, contact.ID, *limit)
	if err != nil {
		return fmt.Errorf("failed to fetch interactions: %w", err)
	}

	if len(interactions) == 0 {
		fmt.Printf("No interactions logged with %s\n", contact.Name)
		return nil
	}

	fmt.Printf("Interactions with %s\n\n", contact.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tTYPE\tSENTIMENT\tNOTES")
	_, _ = fmt.Fprintln(w, "----\t----\t---------\t-----")
	for _, i := range interactions {
		sentiment := "-"
		if i.Sentiment != nil && *i.Sentiment != "" {
			sentiment = *i.Sentiment
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			i.Timestamp.Format(models.DateLayout), i.Type, sentiment, orDash(i.Notes))
	}
	_ = w.Flush()
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, delete_contact and log_interaction tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	db *sql.DB
}

func NewContactHandlers(database *sql.DB) *ContactHandlers {
	return &ContactHandlers{db: database}
}

type AddContactInput struct {
	Name            string `json:"name" jsonschema:"Contact name (required)"`
	Email           string `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone           string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Company         string `json:"company,omitempty" jsonschema:"Company the contact works for"`
	Category        string `json:"category,omitempty" jsonschema:"personal, professional, client or vendor (default professional)"`
	Birthday        string `json:"birthday,omitempty" jsonschema:"Birthday as YYYY-MM-DD"`
	WorkAnniversary string `json:"work_anniversary,omitempty" jsonschema:"Work anniversary as YYYY-MM-DD"`
	Notes           string `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
}

type ContactOutput struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Company         string  `json:"company,omitempty"`
	Category        string  `json:"category"`
	Birthday        string  `json:"birthday,omitempty"`
	WorkAnniversary string  `json:"work_anniversary,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	WelcomePosted   bool    `json:"welcome_posted"`
	LastContactedAt *string `json:"last_contacted_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (h *ContactHandlers) AddContact(_ context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	birthday, err := models.ParseDate(input.Birthday)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid birthday: %w", err)
	}
	anniversary, err := models.ParseDate(input.WorkAnniversary)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid work_anniversary: %w", err)
	}

	contact := &models.Contact{
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Company:         input.Company,
		Category:        input.Category,
		Birthday:        birthday,
		WorkAnniversary: anniversary,
		Notes:           input.Notes,
	}

	if err := db.CreateContact(h.db, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search query (searches name and email)"`
	Company  string `json:"company,omitempty" jsonschema:"Filter by company name"`
	Category string `json:"category,omitempty" jsonschema:"Filter by category"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(_ context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	contacts, err := db.FindContacts(h.db, db.ContactFilter{
		Query:    input.Query,
		Company:  input.Company,
		Category: input.Category,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i, contact := range contacts {
		result[i] = contactToOutput(&contact)
	}

	return nil, FindContactsOutput{Contacts: result}, nil
}

type UpdateContactInput struct {
	ID              string `json:"id" jsonschema:"Contact ID (required)"`
	Name            string `json:"name,omitempty" jsonschema:"Updated contact name"`
	Email           string `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone           string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company         string `json:"company,omitempty" jsonschema:"Updated company"`
	Category        string `json:"category,omitempty" jsonschema:"Updated category"`
	Birthday        string `json:"birthday,omitempty" jsonschema:"Updated birthday as YYYY-MM-DD"`
	WorkAnniversary string `json:"work_anniversary,omitempty" jsonschema:"Updated work anniversary as YYYY-MM-DD"`
	Notes           string `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *ContactHandlers) UpdateContact(_ context.Context, request *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	contactID, err := parseContactID("id", input.ID)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact, err := db.GetContact(h.db, contactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}
	if contact == nil {
		return nil, ContactOutput{}, fmt.Errorf("contact not found")
	}

	// Update fields if provided
	if input.Name != "" {
		contact.Name = input.Name
	}
	if input.Email != "" {
		contact.Email = input.Email
	}
	if input.Phone != "" {
		contact.Phone = input.Phone
	}
	if input.Company != "" {
		contact.Company = input.Company
	}
	if input.Category != "" {
		contact.Category = input.Category
	}
	if input.Notes != "" {
		contact.Notes = input.Notes
	}
	if input.Birthday != "" {
		if contact.Birthday, err = models.ParseDate(input.Birthday); err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid birthday: %w", err)
		}
	}
	if input.WorkAnniversary != "" {
		if contact.WorkAnniversary, err = models.ParseDate(input.WorkAnniversary); err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid work_anniversary: %w", err)
		}
	}

	if err := db.UpdateContact(h.db, contactID, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type DeleteContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

type DeleteContactOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ContactHandlers) DeleteContact(_ context.Context, request *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	contactID, err := parseContactID("id", input.ID)
	if err != nil {
		return nil, DeleteContactOutput{}, err
	}

	if err := db.DeleteContact(h.db, contactID); err != nil {
		return nil, DeleteContactOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil, DeleteContactOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted contact: %s", contactID),
	}, nil
}

type LogInteractionInput struct {
	ContactID       string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Type            string `json:"type,omitempty" jsonschema:"call, email, meeting or other (default other)"`
	Notes           string `json:"notes,omitempty" jsonschema:"Notes about the interaction"`
	Sentiment       string `json:"sentiment,omitempty" jsonschema:"positive, neutral or negative"`
	InteractionDate string `json:"interaction_date,omitempty" jsonschema:"Date of interaction (RFC3339, defaults to now)"`
}

type InteractionOutput struct {
	ID        string  `json:"id"`
	ContactID string  `json:"contact_id"`
	Type      string  `json:"type"`
	Notes     string  `json:"notes,omitempty"`
	Sentiment *string `json:"sentiment,omitempty"`
	Timestamp string  `json:"timestamp"`
}

func (h *ContactHandlers) LogInteraction(_ context.Context, request *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	contactID, err := parseContactID("contact_id", input.ContactID)
	if err != nil {
		return nil, InteractionOutput{}, err
	}

	contact, err := db.GetContact(h.db, contactID)
	if err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}
	if contact == nil {
		return nil, InteractionOutput{}, fmt.Errorf("contact not found")
	}

	// Parse interaction date or use current time
	interactionTime := time.Now()
	if input.InteractionDate != "" {
		parsedTime, err := time.Parse(time.RFC3339, input.InteractionDate)
		if err != nil {
			return nil, InteractionOutput{}, fmt.Errorf("invalid interaction_date format (use ISO 8601/RFC3339): %w", err)
		}
		interactionTime = parsedTime
	}

	interaction := &models.Interaction{
		ContactID: contactID,
		Type:      input.Type,
		Notes:     input.Notes,
		Timestamp: interactionTime,
	}
	if input.Sentiment != "" {
		sentiment := input.Sentiment
		interaction.Sentiment = &sentiment
	}

	if err := db.LogInteraction(h.db, interaction); err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}

	return nil, InteractionOutput{
		ID:        interaction.ID.String(),
		ContactID: contactID.String(),
		Type:      interaction.Type,
		Notes:     interaction.Notes,
		Sentiment: interaction.Sentiment,
		Timestamp: interaction.Timestamp.Format(time.RFC3339),
	}, nil
}

func parseContactID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return id, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

func contactToOutput(contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:              contact.ID.String(),
		Name:            contact.Name,
		Email:           contact.Email,
		Phone:           contact.Phone,
		Company:         contact.Company,
		Category:        contact.Category,
		Birthday:        formatDate(contact.Birthday),
		WorkAnniversary: formatDate(contact.WorkAnniversary),
		Notes:           contact.Notes,
		WelcomePosted:   contact.WelcomePosted,
		CreatedAt:       contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       contact.UpdatedAt.Format(time.RFC3339),
	}

	if contact.LastContactedAt != nil {
		lca := contact.LastContactedAt.Format(time.RFC3339)
		output.LastContactedAt = &lca
	}

	return output
}

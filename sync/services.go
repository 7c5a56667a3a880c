// ABOUTME: Google API service constructors for People, Calendar and Gmail
// ABOUTME: Extra client options let tests point services at local servers
package sync

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

func withClient(client *http.Client, opts []option.ClientOption) []option.ClientOption {
	return append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
}

func NewPeopleService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*people.Service, error) {
	service, err := people.NewService(ctx, withClient(client, opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return service, nil
}

func NewCalendarService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*calendar.Service, error) {
	service, err := calendar.NewService(ctx, withClient(client, opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}

// NewGmailService is used to send fallback notifications.
func NewGmailService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*gmail.Service, error) {
	service, err := gmail.NewService(ctx, withClient(client, opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return service, nil
}

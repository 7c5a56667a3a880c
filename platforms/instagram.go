// ABOUTME: Instagram Graph API client for business accounts
// ABOUTME: Creates a media container then publishes it; replies go to comment threads
package platforms

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/harperreed/amplify/models"
)

// ErrMediaRequired is returned when an Instagram post has no image.
var ErrMediaRequired = errors.New("instagram posts need at least one image url")

type Instagram struct {
	client *resty.Client
	token  string
	userID string
}

// NewInstagram creates a client for the Instagram business user id.
func NewInstagram(token, userID, baseURL string) *Instagram {
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	return &Instagram{
		client: newRestClient(models.PlatformInstagram, baseURL),
		token:  token,
		userID: userID,
	}
}

func (i *Instagram) Name() string { return models.PlatformInstagram }

func (i *Instagram) Limits() Limits { return limits[models.PlatformInstagram] }

// Publish creates a container for the first image and publishes it.
func (i *Instagram) Publish(ctx context.Context, text string, media []string) (*Receipt, error) {
	if len(media) == 0 {
		return nil, ErrMediaRequired
	}
	if i.userID == "" {
		return nil, fmt.Errorf("instagram user id is required")
	}

	var container graphIDResponse
	req := i.client.R().
		SetFormData(map[string]string{
			"image_url":    media[0],
			"caption":      text,
			"access_token": i.token,
		}).
		SetResult(&container)
	if _, err := send(ctx, models.PlatformInstagram, req, http.MethodPost, "/"+graphVersion+"/"+i.userID+"/media"); err != nil {
		return nil, err
	}
	if container.ID == "" {
		return nil, fmt.Errorf("instagram returned no container id")
	}

	var published graphIDResponse
	req = i.client.R().
		SetFormData(map[string]string{
			"creation_id":  container.ID,
			"access_token": i.token,
		}).
		SetResult(&published)
	if _, err := send(ctx, models.PlatformInstagram, req, http.MethodPost, "/"+graphVersion+"/"+i.userID+"/media_publish"); err != nil {
		return nil, err
	}
	if published.ID == "" {
		return nil, fmt.Errorf("instagram returned no media id")
	}
	return &Receipt{ID: published.ID}, nil
}

// Reply answers a comment on one of the account's media.
func (i *Instagram) Reply(ctx context.Context, inReplyTo, text string) (*Receipt, error) {
	var out graphIDResponse
	req := i.client.R().
		SetFormData(map[string]string{"message": text, "access_token": i.token}).
		SetResult(&out)
	if _, err := send(ctx, models.PlatformInstagram, req, http.MethodPost, "/"+graphVersion+"/"+inReplyTo+"/replies"); err != nil {
		return nil, err
	}
	return &Receipt{ID: out.ID}, nil
}

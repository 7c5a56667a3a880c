// ABOUTME: Facebook Pages client on the Graph API
// ABOUTME: Publishes page feed posts and comments on posts or comments
package platforms

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/harperreed/amplify/models"
)

const (
	// DefaultGraphBaseURL serves both Facebook and Instagram Graph calls.
	DefaultGraphBaseURL = "https://graph.facebook.com"

	graphVersion = "v19.0"
)

type Facebook struct {
	client *resty.Client
	token  string
	pageID string
}

// NewFacebook creates a client for the page using a page access token.
func NewFacebook(token, pageID, baseURL string) *Facebook {
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	return &Facebook{
		client: newRestClient(models.PlatformFacebook, baseURL),
		token:  token,
		pageID: pageID,
	}
}

func (f *Facebook) Name() string { return models.PlatformFacebook }

func (f *Facebook) Limits() Limits { return limits[models.PlatformFacebook] }

type graphIDResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// Publish posts to the page feed; the first media URL becomes the link.
func (f *Facebook) Publish(ctx context.Context, text string, media []string) (*Receipt, error) {
	if f.pageID == "" {
		return nil, fmt.Errorf("facebook page id is required")
	}

	form := map[string]string{
		"message":      text,
		"access_token": f.token,
	}
	if len(media) > 0 {
		form["link"] = media[0]
	}

	var out graphIDResponse
	req := f.client.R().SetFormData(form).SetResult(&out)
	if _, err := send(ctx, models.PlatformFacebook, req, http.MethodPost, "/"+graphVersion+"/"+f.pageID+"/feed"); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("facebook returned no post id")
	}
	return &Receipt{ID: out.ID, URL: "https://www.facebook.com/" + out.ID}, nil
}

func (f *Facebook) Reply(ctx context.Context, inReplyTo, text string) (*Receipt, error) {
	var out graphIDResponse
	req := f.client.R().
		SetFormData(map[string]string{"message": text, "access_token": f.token}).
		SetResult(&out)
	if _, err := send(ctx, models.PlatformFacebook, req, http.MethodPost, "/"+graphVersion+"/"+inReplyTo+"/comments"); err != nil {
		return nil, err
	}
	return &Receipt{ID: out.ID}, nil
}

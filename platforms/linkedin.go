// ABOUTME: LinkedIn UGC posts client
// ABOUTME: Shares text or article posts as a member and comments on existing shares
package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/harperreed/amplify/models"
)

// DefaultLinkedInBaseURL is the public API host.
const DefaultLinkedInBaseURL = "https://api.linkedin.com"

type LinkedIn struct {
	client   *resty.Client
	personID string
}

// NewLinkedIn creates a client posting as urn:li:person:<personID>.
func NewLinkedIn(token, personID, baseURL string) *LinkedIn {
	if baseURL == "" {
		baseURL = DefaultLinkedInBaseURL
	}
	c := newRestClient(models.PlatformLinkedIn, baseURL)
	c.SetAuthToken(token)
	c.SetHeader("X-Restli-Protocol-Version", "2.0.0")
	return &LinkedIn{client: c, personID: personID}
}

func (l *LinkedIn) Name() string { return models.PlatformLinkedIn }

func (l *LinkedIn) Limits() Limits { return limits[models.PlatformLinkedIn] }

func (l *LinkedIn) author() string {
	return "urn:li:person:" + l.personID
}

type ugcMedia struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type ugcShareContent struct {
	ShareCommentary struct {
		Text string `json:"text"`
	} `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
	Media              []ugcMedia `json:"media,omitempty"`
}

type ugcPost struct {
	Author          string                     `json:"author"`
	LifecycleState  string                     `json:"lifecycleState"`
	SpecificContent map[string]ugcShareContent `json:"specificContent"`
	Visibility      map[string]string          `json:"visibility"`
}

type linkedInPostResponse struct {
	ID string `json:"id"`
}

// Publish shares text; the first media URL, if any, is attached as an article.
func (l *LinkedIn) Publish(ctx context.Context, text string, media []string) (*Receipt, error) {
	if l.personID == "" {
		return nil, fmt.Errorf("linkedin person id is required")
	}

	share := ugcShareContent{ShareMediaCategory: "NONE"}
	share.ShareCommentary.Text = text
	if len(media) > 0 {
		share.ShareMediaCategory = "ARTICLE"
		share.Media = []ugcMedia{{Status: "READY", OriginalURL: media[0]}}
	}

	body := ugcPost{
		Author:          l.author(),
		LifecycleState:  "PUBLISHED",
		SpecificContent: map[string]ugcShareContent{"com.linkedin.ugc.ShareContent": share},
		Visibility:      map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	var out linkedInPostResponse
	resp, err := send(ctx, models.PlatformLinkedIn, l.client.R().SetBody(body).SetResult(&out), http.MethodPost, "/v2/ugcPosts")
	if err != nil {
		return nil, err
	}

	id := out.ID
	if id == "" {
		id = resp.Header().Get("X-RestLi-Id")
	}
	if id == "" {
		return nil, fmt.Errorf("linkedin returned no post id")
	}
	return &Receipt{ID: id, URL: "https://www.linkedin.com/feed/update/" + id}, nil
}

type linkedInComment struct {
	Actor   string `json:"actor"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// Reply comments on the share identified by its URN.
func (l *LinkedIn) Reply(ctx context.Context, inReplyTo, text string) (*Receipt, error) {
	body := linkedInComment{Actor: l.author()}
	body.Message.Text = text

	var out linkedInPostResponse
	path := "/v2/socialActions/" + url.PathEscape(inReplyTo) + "/comments"
	if _, err := send(ctx, models.PlatformLinkedIn, l.client.R().SetBody(body).SetResult(&out), http.MethodPost, path); err != nil {
		return nil, err
	}
	return &Receipt{ID: out.ID}, nil
}

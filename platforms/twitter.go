// ABOUTME: Twitter (X) API v2 client
// ABOUTME: Posts tweets, replies to tweets, and reads mentions for the auto-responder
package platforms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harperreed/amplify/models"
)

// DefaultTwitterBaseURL is the public API host.
const DefaultTwitterBaseURL = "https://api.twitter.com"

type Twitter struct {
	client *resty.Client
	userID string
}

// NewTwitter creates a client using an OAuth 2.0 user access token.
func NewTwitter(token, userID, baseURL string) *Twitter {
	if baseURL == "" {
		baseURL = DefaultTwitterBaseURL
	}
	c := newRestClient(models.PlatformTwitter, baseURL)
	c.SetAuthToken(token)
	return &Twitter{client: c, userID: userID}
}

func (t *Twitter) Name() string { return models.PlatformTwitter }

func (t *Twitter) Limits() Limits { return limits[models.PlatformTwitter] }

type tweetRequest struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Publish posts a tweet. Media attachment needs the separate upload API, so
// media URLs are ignored here.
func (t *Twitter) Publish(ctx context.Context, text string, _ []string) (*Receipt, error) {
	return t.tweet(ctx, tweetRequest{Text: text})
}

func (t *Twitter) Reply(ctx context.Context, inReplyTo, text string) (*Receipt, error) {
	return t.tweet(ctx, tweetRequest{Text: text, Reply: &tweetReply{InReplyToTweetID: inReplyTo}})
}

func (t *Twitter) tweet(ctx context.Context, body tweetRequest) (*Receipt, error) {
	var out tweetResponse
	req := t.client.R().SetBody(body).SetResult(&out)
	if _, err := send(ctx, models.PlatformTwitter, req, http.MethodPost, "/2/tweets"); err != nil {
		return nil, err
	}
	if out.Data.ID == "" {
		return nil, fmt.Errorf("twitter returned no tweet id")
	}
	return &Receipt{
		ID:  out.Data.ID,
		URL: "https://twitter.com/i/web/status/" + out.Data.ID,
	}, nil
}

type mentionsResponse struct {
	Data []struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		AuthorID  string    `json:"author_id"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Meta struct {
		NewestID string `json:"newest_id"`
	} `json:"meta"`
}

// Mentions returns tweets mentioning the account newer than sinceID, oldest
// first, plus the newest id to use as the next cursor.
func (t *Twitter) Mentions(ctx context.Context, sinceID string) ([]models.Mention, string, error) {
	if t.userID == "" {
		return nil, sinceID, fmt.Errorf("twitter account id is required to read mentions")
	}

	var out mentionsResponse
	req := t.client.R().
		SetPathParam("id", t.userID).
		SetQueryParams(map[string]string{
			"expansions":   "author_id",
			"tweet.fields": "created_at,author_id",
			"user.fields":  "username",
			"max_results":  "100",
		}).
		SetResult(&out)
	if sinceID != "" {
		req.SetQueryParam("since_id", sinceID)
	}

	if _, err := send(ctx, models.PlatformTwitter, req, http.MethodGet, "/2/users/{id}/mentions"); err != nil {
		return nil, sinceID, err
	}

	usernames := make(map[string]string, len(out.Includes.Users))
	for _, u := range out.Includes.Users {
		usernames[u.ID] = u.Username
	}

	mentions := make([]models.Mention, 0, len(out.Data))
	for i := len(out.Data) - 1; i >= 0; i-- {
		d := out.Data[i]
		author := d.AuthorID
		if name, ok := usernames[d.AuthorID]; ok {
			author = "@" + name
		}
		mentions = append(mentions, models.Mention{
			ID:        d.ID,
			Platform:  models.PlatformTwitter,
			Author:    author,
			Text:      d.Text,
			CreatedAt: d.CreatedAt,
		})
	}

	cursor := sinceID
	if out.Meta.NewestID != "" {
		cursor = out.Meta.NewestID
	}
	return mentions, cursor, nil
}

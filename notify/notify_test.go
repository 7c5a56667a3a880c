// ABOUTME: Tests for fallback notification transports
// ABOUTME: Gmail runs against an httptest server; SES uses a fake client
package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/harperreed/amplify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func sampleEntry() *models.FallbackEntry {
	return &models.FallbackEntry{
		PostID:    "01HX",
		Platform:  models.PlatformLinkedIn,
		Content:   "Our new office is open!",
		Error:     "linkedin API error [401]: token expired",
		ErrorKind: models.ErrorKindPermanent,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBodyIncludesContentAndError(t *testing.T) {
	body := Body(sampleEntry())
	assert.Contains(t, body, "Our new office is open!")
	assert.Contains(t, body, "token expired")
	assert.Contains(t, body, "01HX")
	assert.Contains(t, Subject(sampleEntry()), "linkedin")
}

func TestLogNotifierNeverFails(t *testing.T) {
	entry := sampleEntry()
	require.NoError(t, LogNotifier{}.Notify(context.Background(), entry))
	assert.Empty(t, entry.Recipient)
}

func TestGmailNotifierSendsRawMessage(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		var msg gmail.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		raw = msg.Raw
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	svc, err := gmail.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	n, err := NewGmailNotifier(svc, "", "ops@example.com")
	require.NoError(t, err)

	entry := sampleEntry()
	require.NoError(t, n.Notify(context.Background(), entry))
	assert.Equal(t, "ops@example.com", entry.Recipient)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: ops@example.com")
	assert.Contains(t, string(decoded), "Our new office is open!")
}

func TestNewGmailNotifierValidation(t *testing.T) {
	_, err := NewGmailNotifier(nil, "", "a@b.c")
	assert.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESNotifier(t *testing.T) {
	fake := &fakeSES{}
	n := &SESNotifier{client: fake, from: "bot@example.com", to: "ops@example.com"}

	entry := sampleEntry()
	require.NoError(t, n.Notify(context.Background(), entry))
	require.NotNil(t, fake.input)
	assert.Equal(t, "bot@example.com", aws.ToString(fake.input.Source))
	assert.Equal(t, []string{"ops@example.com"}, fake.input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Text.Data), "Our new office is open!")
	assert.Equal(t, "ops@example.com", entry.Recipient)
}

func TestSESNotifierError(t *testing.T) {
	n := &SESNotifier{client: &fakeSES{err: errors.New("throttled")}, from: "a@b.c", to: "d@e.f"}
	err := n.Notify(context.Background(), sampleEntry())
	assert.ErrorContains(t, err, "throttled")
}

func TestNewSESNotifierNeedsAddresses(t *testing.T) {
	_, err := NewSESNotifier(context.Background(), "us-east-1", "", "ops@example.com")
	assert.Error(t, err)
}

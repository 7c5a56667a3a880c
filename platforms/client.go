// ABOUTME: Shared resty plumbing for platform clients
// ABOUTME: Base URL, bearer auth, timeout, debug hooks and API error decoding
package platforms

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harperreed/amplify/logging"
)

// DefaultTimeout bounds every platform request.
const DefaultTimeout = 30 * time.Second

const userAgent = "amplify/1.0"

func newRestClient(platform, baseURL string) *resty.Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetTimeout(DefaultTimeout)
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "application/json")

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logging.Debug("platform request", "platform", platform, "method", req.Method, "url", req.URL)
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logging.Debug("platform response", "platform", platform, "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})

	return c
}

// send executes req and turns a non-2xx response into *APIError.
func send(ctx context.Context, platform string, req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return resp, parseAPIError(platform, resp)
	}
	return resp, nil
}

// errorBody covers the error envelopes of Twitter v2, LinkedIn and the Graph API.
type errorBody struct {
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Error *struct {
		Message     string `json:"message"`
		Code        int    `json:"code"`
		IsTransient bool   `json:"is_transient"`
	} `json:"error"`
}

// Graph API throttling codes. They arrive with HTTP 400.
var graphThrottleCodes = map[int]bool{4: true, 17: true, 32: true, 613: true}

func parseAPIError(platform string, resp *resty.Response) *APIError {
	apiErr := &APIError{
		Platform:   platform,
		StatusCode: resp.StatusCode(),
		Message:    strings.TrimSpace(resp.String()),
	}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		if apiErr.Message == "" {
			apiErr.Message = resp.Status()
		}
		return apiErr
	}

	switch {
	case body.Error != nil && body.Error.Message != "":
		apiErr.Message = body.Error.Message
		apiErr.Retryable = body.Error.IsTransient || graphThrottleCodes[body.Error.Code]
	case body.Detail != "":
		apiErr.Message = body.Detail
	case body.Message != "":
		apiErr.Message = body.Message
	case len(body.Errors) > 0 && body.Errors[0].Message != "":
		apiErr.Message = body.Errors[0].Message
	case body.Title != "":
		apiErr.Message = body.Title
	}

	if apiErr.Message == "" {
		apiErr.Message = resp.Status()
	}
	return apiErr
}

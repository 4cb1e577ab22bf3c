package client

import (
	"context"
	"fmt"
	"strings"

	"creative-studio/pkg/api"

	"github.com/go-resty/resty/v2"
)

// Client talks to the studio's /api/v1 endpoints.
type Client struct {
	client *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		client: resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/") + "/api/v1"),
	}
}

func checkResponse(res *resty.Response, err error, action string) error {
	if err != nil {
		return fmt.Errorf("unable to %s: %w", action, err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("unable to %s: studio returned %d: %s", action, res.StatusCode(), strings.TrimSpace(res.String()))
	}
	return nil
}

func (c *Client) Tools(ctx context.Context) ([]api.Tool, error) {
	var tools []api.Tool
	res, err := c.client.R().SetContext(ctx).SetResult(&tools).Get("/tools")
	if err := checkResponse(res, err, "list tools"); err != nil {
		return nil, err
	}
	return tools, nil
}

func (c *Client) StartSession(ctx context.Context) (string, error) {
	var started api.StartSessionResponse
	res, err := c.client.R().SetContext(ctx).SetResult(&started).Post("/sessions")
	if err := checkResponse(res, err, "start session"); err != nil {
		return "", err
	}
	return started.SessionID, nil
}

func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	res, err := c.client.R().SetContext(ctx).
		SetPathParam("session_id", sessionID).
		Delete("/sessions/{session_id}")
	return checkResponse(res, err, "end session")
}

func (c *Client) SetApiKey(ctx context.Context, sessionID, apiKey string) error {
	res, err := c.client.R().SetContext(ctx).
		SetPathParam("session_id", sessionID).
		SetBody(api.ApiKey{ApiKey: apiKey}).
		Put("/sessions/{session_id}/api-key")
	return checkResponse(res, err, "set api key")
}

// Generate returns the studio's result. A provider failure is not an error
// here: it comes back with Ok false and the message in Error.
func (c *Client) Generate(ctx context.Context, sessionID, kind, input string) (api.GenerateResponse, error) {
	var out api.GenerateResponse
	res, err := c.client.R().SetContext(ctx).
		SetPathParam("session_id", sessionID).
		SetBody(api.GenerateRequest{Kind: kind, Input: input}).
		SetResult(&out).
		Post("/sessions/{session_id}/generate")
	if err := checkResponse(res, err, "generate"); err != nil {
		return api.GenerateResponse{}, err
	}
	return out, nil
}

// History returns the last limit entries of kind; limit 0 returns all of them.
func (c *Client) History(ctx context.Context, sessionID, kind string, limit int) ([]api.HistoryItem, error) {
	var items []api.HistoryItem
	res, err := c.client.R().SetContext(ctx).
		SetPathParams(map[string]string{"session_id": sessionID, "kind": kind}).
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetResult(&items).
		Get("/sessions/{session_id}/history/{kind}")
	if err := checkResponse(res, err, "get history"); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Usage(ctx context.Context) ([]api.KindUsage, error) {
	var usage []api.KindUsage
	res, err := c.client.R().SetContext(ctx).SetResult(&usage).Get("/usage")
	if err := checkResponse(res, err, "get usage"); err != nil {
		return nil, err
	}
	return usage, nil
}

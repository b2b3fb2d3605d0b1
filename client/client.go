// Package client talks to the score service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"student-scores/apperr"
	"student-scores/models"
)

type Client struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	HTTP  *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// fetch performs one call and returns the response payload. Non-2xx replies
// are turned back into kinded errors from the service's error body.
func (c *Client) fetch(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, method+" "+path)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.Wrap(err, "read response")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, decodeError(res.StatusCode, payload)
	}
	return payload, nil
}

func decodeError(status int, payload []byte) error {
	msg := gjson.GetBytes(payload, "message").String()
	if msg == "" {
		msg = http.StatusText(status)
	}
	kind := apperr.Kind(gjson.GetBytes(payload, "kind").String())
	if kind == "" {
		switch status {
		case http.StatusBadRequest:
			kind = apperr.Validation
		case http.StatusNotFound:
			kind = apperr.NotFound
		default:
			kind = apperr.Transport
		}
	}
	return &apperr.Error{Kind: kind, Message: msg}
}

func (c *Client) ListStudents(ctx context.Context, subject string) ([]models.StudentRecord, error) {
	payload, err := c.fetch(ctx, http.MethodGet, "/students"+subjectQuery(subject), nil)
	if err != nil {
		return nil, err
	}
	var records []models.StudentRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, errors.Wrap(err, "decode students")
	}
	return records, nil
}

func (c *Client) GetStudent(ctx context.Context, subject, identifier string) (*models.StudentRecord, error) {
	payload, err := c.fetch(ctx, http.MethodGet, "/students/"+url.PathEscape(identifier)+subjectQuery(subject), nil)
	if err != nil {
		return nil, err
	}
	var rec models.StudentRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, errors.Wrap(err, "decode student")
	}
	return &rec, nil
}

func (c *Client) PatchStudent(ctx context.Context, req models.PatchRequest) (*models.PatchResult, error) {
	payload, err := c.fetch(ctx, http.MethodPatch, "/students", req)
	if err != nil {
		return nil, err
	}
	var res models.PatchResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, errors.Wrap(err, "decode patch result")
	}
	return &res.PatchResult, nil
}

func (c *Client) DeleteStudent(ctx context.Context, identifier string) error {
	_, err := c.fetch(ctx, http.MethodDelete, "/students", models.DeleteRequest{Identifier: identifier})
	return err
}

func (c *Client) Import(ctx context.Context, req models.ImportRequest, verbose bool) (*models.ImportResult, error) {
	path := "/students/import"
	if verbose {
		path += "?verbose=true"
	}
	payload, err := c.fetch(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	var res models.ImportResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, errors.Wrap(err, "decode import result")
	}
	return &res, nil
}

func (c *Client) GetConfig(ctx context.Context) (*models.Config, error) {
	payload, err := c.fetch(ctx, http.MethodGet, "/config", nil)
	if err != nil {
		return nil, err
	}
	var cfg models.Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

// PutConfig replaces the configuration and returns the lint warnings.
func (c *Client) PutConfig(ctx context.Context, cfg *models.Config) ([]string, error) {
	payload, err := c.fetch(ctx, http.MethodPut, "/config", cfg)
	if err != nil {
		return nil, err
	}
	var warnings []string
	gjson.GetBytes(payload, "warnings").ForEach(func(_, w gjson.Result) bool {
		warnings = append(warnings, w.String())
		return true
	})
	return warnings, nil
}

func subjectQuery(subject string) string {
	if subject == "" {
		return ""
	}
	return "?subject=" + url.QueryEscape(subject)
}

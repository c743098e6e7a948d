// Package apiclient queries a running salarycalc server over its JSON API.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"salarycalc/internal/core"
)

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("status code: %d, detail: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("status code: %d", e.Code)
}

type errorBody struct {
	Detail string `json:"detail"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, "/api/countries", nil, &out)
	return out, err
}

func (c *Client) Languages(ctx context.Context, country string) ([]string, error) {
	var out []string
	err := c.get(ctx, "/api/languages", filterParams(core.Filter{Country: country}), &out)
	return out, err
}

func (c *Client) ExperienceLevels(ctx context.Context, country, language string) ([]string, error) {
	var out []string
	err := c.get(ctx, "/api/experience-levels", filterParams(core.Filter{Country: country, Language: language}), &out)
	return out, err
}

func (c *Client) Entries(ctx context.Context, f core.Filter) ([]core.SalaryEntry, error) {
	var out []core.SalaryEntry
	err := c.get(ctx, "/api/salary-data", filterParams(f), &out)
	return out, err
}

// Stats returns core.ErrEmptyResult when the server finds no matching data.
func (c *Client) Stats(ctx context.Context, f core.Filter) (core.Stats, error) {
	var out core.Stats
	err := c.get(ctx, "/api/salary-stats", filterParams(f), &out)
	return out, err
}

func (c *Client) StatsByCategory(ctx context.Context, f core.Filter) ([]core.CategoryStats, error) {
	var out []core.CategoryStats
	err := c.get(ctx, "/api/salary-stats/by-category", filterParams(f), &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	var apiErr errorBody
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}

	switch {
	case res.IsSuccess():
		return nil
	case res.StatusCode() == http.StatusNotFound && apiErr.Detail != "":
		return fmt.Errorf("get %s: %w", path, core.ErrEmptyResult)
	default:
		detail := apiErr.Detail
		if detail == "" {
			detail = strings.TrimSpace(string(res.Body()))
		}
		return fmt.Errorf("get %s: %w", path, &StatusError{Code: res.StatusCode(), Detail: detail})
	}
}

// IsEmptyResult reports whether err means the filters matched nothing.
func IsEmptyResult(err error) bool {
	return errors.Is(err, core.ErrEmptyResult)
}

func filterParams(f core.Filter) map[string]string {
	params := map[string]string{}
	if f.Country != "" {
		params["country"] = f.Country
	}
	if f.Language != "" {
		params["language"] = f.Language
	}
	if f.Experience != "" {
		params["experience"] = f.Experience
	}
	return params
}

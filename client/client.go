// Package client is a typed HTTP client for the feedback server. Each
// Client value carries its own bearer token; there is no shared session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := &Error{Kind: KindForStatus(resp.StatusCode), Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			e.Message = eb.Message
			e.Fields = eb.Fields
		}
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return e
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decode response")
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login/", nil, map[string]string{
		"username": username,
		"password": password,
	}, &res)
	return res, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout/", nil, nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/api/auth/user/", nil, nil, &u)
	return u, err
}

func (c *Client) ListForms(ctx context.Context, f FormFilter) ([]Form, error) {
	q := url.Values{}
	if f.FormType != "" {
		q.Set("form_type", f.FormType)
	}
	if f.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	var forms []Form
	err := c.do(ctx, http.MethodGet, "/api/forms/", q, nil, &forms)
	return forms, err
}

func (c *Client) CreateForm(ctx context.Context, in FormInput) (Form, error) {
	var f Form
	err := c.do(ctx, http.MethodPost, "/api/forms/", nil, in, &f)
	return f, err
}

func (c *Client) GetForm(ctx context.Context, id string) (Form, error) {
	var f Form
	err := c.do(ctx, http.MethodGet, "/api/forms/"+url.PathEscape(id)+"/", nil, nil, &f)
	return f, err
}

func (c *Client) DeleteForm(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/forms/"+url.PathEscape(id)+"/", nil, nil, nil)
}

func (c *Client) Analytics(ctx context.Context, id string) (Analytics, error) {
	var a Analytics
	err := c.do(ctx, http.MethodGet, "/api/forms/"+url.PathEscape(id)+"/analytics/", nil, nil, &a)
	return a, err
}

func (c *Client) QuestionAnalytics(ctx context.Context, id string) ([]QuestionStats, error) {
	var stats []QuestionStats
	err := c.do(ctx, http.MethodGet, "/api/forms/"+url.PathEscape(id)+"/question_analytics/", nil, nil, &stats)
	return stats, err
}

func (c *Client) ShareLink(ctx context.Context, id string) (ShareLink, error) {
	var l ShareLink
	err := c.do(ctx, http.MethodGet, "/api/forms/"+url.PathEscape(id)+"/share_link/", nil, nil, &l)
	return l, err
}

func (c *Client) ListResponses(ctx context.Context, rq ResponseQuery) (ResponsePage, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"form_type": rq.FormType,
		"form_id":   rq.FormID,
		"date_from": rq.DateFrom,
		"date_to":   rq.DateTo,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if rq.Page > 0 {
		q.Set("page", strconv.Itoa(rq.Page))
	}
	if rq.Limit > 0 {
		q.Set("limit", strconv.Itoa(rq.Limit))
	}
	var page ResponsePage
	err := c.do(ctx, http.MethodGet, "/api/responses/", q, nil, &page)
	return page, err
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var res struct {
		UnreadCount int64 `json:"unread_count"`
	}
	err := c.do(ctx, http.MethodGet, "/api/notifications/unread_count/", nil, nil, &res)
	return res.UnreadCount, err
}

func (c *Client) PublicForms(ctx context.Context) ([]PublicForm, error) {
	var forms []PublicForm
	err := c.do(ctx, http.MethodGet, "/api/public/forms/", nil, nil, &forms)
	return forms, err
}

func (c *Client) PublicForm(ctx context.Context, id string) (PublicForm, error) {
	var f PublicForm
	err := c.do(ctx, http.MethodGet, "/api/public/feedback/"+url.PathEscape(id)+"/", nil, nil, &f)
	return f, err
}

func (c *Client) Submit(ctx context.Context, id string, answers []AnswerInput) (SubmissionResult, error) {
	var res SubmissionResult
	err := c.do(ctx, http.MethodPost, "/api/public/feedback/"+url.PathEscape(id)+"/", nil,
		map[string]interface{}{"answers": answers}, &res)
	return res, err
}

// Package client is a typed HTTP client for the roommate listing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"io"
	"net/http"
	"net/url"
	"roommate_service/domain"
	"strings"
	"time"
)

var ErrNoSession = stderrors.New("sign in required")

// Session is the signed-in user. It is passed to every call that needs it;
// a nil session makes an anonymous request.
type Session struct {
	Token       string
	Email       string
	DisplayName string
}

func (s *Session) SignedIn() bool {
	return s != nil && s.Token != ""
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API at baseURL. A nil httpClient gets a
// client with a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Browse(ctx context.Context, session *Session, search string, sort domain.SortOrder) ([]*domain.Listing, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if sort != domain.SortNone {
		query.Set("sort", string(sort))
	}
	path := "/browse_listing"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	listings := []*domain.Listing{}
	err := c.do(ctx, session, http.MethodGet, path, nil, &listings)
	return listings, err
}

func (c *Client) ListingsByEmail(ctx context.Context, session *Session, email string) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	err := c.do(ctx, session, http.MethodGet, "/browse_listing/"+url.PathEscape(email), nil, &listings)
	return listings, err
}

func (c *Client) Featured(ctx context.Context, session *Session) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	err := c.do(ctx, session, http.MethodGet, "/available-roommates", nil, &listings)
	return listings, err
}

func (c *Client) Details(ctx context.Context, session *Session, id string) (*domain.Listing, error) {
	var listing domain.Listing
	if err := c.do(ctx, session, http.MethodGet, "/details/"+url.PathEscape(id), nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *Client) Stats(ctx context.Context, session *Session) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.do(ctx, session, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Create(ctx context.Context, session *Session, input *domain.ListingInput) (*domain.InsertResult, error) {
	if !session.SignedIn() {
		return nil, ErrNoSession
	}
	var result domain.InsertResult
	if err := c.do(ctx, session, http.MethodPost, "/add", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Like(ctx context.Context, session *Session, id string) (*domain.LikeResult, error) {
	if !session.SignedIn() {
		return nil, ErrNoSession
	}
	var result domain.LikeResult
	body := map[string]string{"userEmail": session.Email}
	if err := c.do(ctx, session, http.MethodPut, "/like/"+url.PathEscape(id), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update sends only the given fields; the server leaves the others untouched.
func (c *Client) Update(ctx context.Context, session *Session, id string, fields map[string]interface{}) (*domain.UpdateResult, error) {
	if !session.SignedIn() {
		return nil, ErrNoSession
	}
	var result domain.UpdateResult
	if err := c.do(ctx, session, http.MethodPut, "/update-listing/"+url.PathEscape(id), fields, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Delete(ctx context.Context, session *Session, id string) (*domain.DeleteResult, error) {
	if !session.SignedIn() {
		return nil, ErrNoSession
	}
	var result domain.DeleteResult
	if err := c.do(ctx, session, http.MethodDelete, "/delete-listing/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, session *Session, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session.SignedIn() {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

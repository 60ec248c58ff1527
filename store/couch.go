// Package store is the document persistence adapter: a thin CouchDB
// client implementing the fetch-then-upsert protocol with optimistic
// revisions.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the store has no document under an id.
var ErrNotFound = errors.New("document not found")

// ConflictError reports that an upsert lost a revision race to another
// writer. It is not retried here; callers decide their own policy.
type ConflictError struct {
	ID  string
	Rev string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("revision conflict on %s (rev %q)", e.ID, e.Rev)
}

// IsConflict reports whether err is a revision conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// Client talks to one CouchDB database.
type Client struct {
	base string
	db   string
	http *http.Client
}

func NewClient(baseURL, database string) *Client {
	return &Client{
		base: baseURL,
		db:   database,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) docURL(id string) string {
	return fmt.Sprintf("%s/%s/%s", c.base, c.db, url.PathEscape(id))
}

// Rev fetches the current revision of a document, or "" when the
// document does not exist yet.
func (c *Client) Rev(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(id), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get %s: unexpected status %d", id, resp.StatusCode)
	}
	var doc struct {
		Rev string `json:"_rev"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode %s: %w", id, err)
	}
	return doc.Rev, nil
}

// Get loads a document into out.
func (c *Client) Get(ctx context.Context, id string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(id), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", id, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Upsert PUTs a full document under id. rev must be the freshest value
// obtained from Rev ("" for first creation) and travels in the body as
// _rev; a stale rev yields a ConflictError. Returns the new revision.
func (c *Client) Upsert(ctx context.Context, id, rev string, doc interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", id, err)
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("marshal %s: %w", id, err)
	}
	payload["_id"] = id
	if rev != "" {
		payload["_rev"] = rev
	} else {
		delete(payload, "_rev")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", id, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.docURL(id), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return "", &ConflictError{ID: id, Rev: rev}
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("put %s: status %d: %s", id, resp.StatusCode, bytes.TrimSpace(b))
	}
	var result struct {
		OK  bool   `json:"ok"`
		Rev string `json:"rev"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode put response for %s: %w", id, err)
	}
	return result.Rev, nil
}

// Package km is a client for the local key-manager service, which hands
// out one-time-pad key material over plain HTTP on the loopback
// interface. New keys come back with an X-Key-Id header so the peer can
// fetch the same pad later by id.
package km

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is where the key manager listens by default.
const DefaultBaseURL = "http://127.0.0.1:2020"

const keyIDHeader = "X-Key-Id"

var (
	// ErrKeyNotFound is returned when the service has no key under
	// the requested id.
	ErrKeyNotFound = errors.New("km: key not found")

	// ErrMissingKeyID is returned when a new-key response carries no
	// X-Key-Id header.
	ErrMissingKeyID = errors.New("km: response missing " + keyIDHeader + " header")
)

// Health is the service's health report.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Metrics struct {
		StoredKeys      int  `json:"stored_keys"`
		StoreFileExists bool `json:"store_file_exists"`
	} `json:"metrics"`
}

// Client talks to one key-manager instance. The zero value is not
// usable; construct it with New.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *logrus.Entry
}

// New returns a client for the key manager at baseURL, or at
// DefaultBaseURL when baseURL is empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
		log:     logrus.WithField("component", "km-client"),
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests
// and callers with their own transport settings.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.hc = hc
	return c
}

// NewKey asks the service for fresh key material of the given size and
// returns the key bytes along with the id it was stored under.
func (c *Client) NewKey(ctx context.Context, size int) ([]byte, string, error) {
	if size <= 0 {
		return nil, "", fmt.Errorf("km: invalid key size %d", size)
	}
	log := c.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"size":       size,
	})

	u := fmt.Sprintf("%s/otp/keys?size=%d", c.baseURL, size)
	body, header, err := c.get(ctx, u)
	if err != nil {
		log.WithError(err).Warn("new key request failed")
		return nil, "", err
	}
	id := header.Get(keyIDHeader)
	if id == "" {
		return nil, "", ErrMissingKeyID
	}
	if len(body) != size {
		return nil, "", fmt.Errorf("km: got %d key bytes, want %d", len(body), size)
	}
	log.WithField("key_id", id).Debug("fetched new key")
	return body, id, nil
}

// KeyByID fetches previously issued key material by id.
func (c *Client) KeyByID(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("km: empty key id")
	}
	log := c.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"key_id":     id,
	})

	u := c.baseURL + "/otp/keys/" + url.PathEscape(id)
	body, _, err := c.get(ctx, u)
	if err != nil {
		log.WithError(err).Warn("key fetch failed")
		return nil, err
	}
	log.Debug("fetched key by id")
	return body, nil
}

// Health queries the service's health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	body, _, err := c.get(ctx, c.baseURL+"/health")
	if err != nil {
		return nil, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("km: decoding health response: %w", err)
	}
	return &h, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("km: building request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("km: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil, ErrKeyNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, nil, fmt.Errorf("km: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("km: reading response: %w", err)
	}
	return body, resp.Header, nil
}

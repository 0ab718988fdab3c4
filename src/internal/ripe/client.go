// Package ripe queries the RIPEstat country resource list.
package ripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/hashing"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

// DefaultEndpoint is the RIPEstat country-resource-list data call.
const DefaultEndpoint = "https://stat.ripe.net/data/country-resource-list/data.json"

// Registry returns the IPv4 resources allocated to a country.
type Registry interface {
	FetchIPv4(ctx context.Context, country string) ([]string, error)
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Resources struct {
			IPv4 []string `json:"ipv4"`
		} `json:"resources"`
		QueryTime string `json:"query_time"`
	} `json:"data"`
}

// Client is a Registry backed by the RIPEstat HTTP API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client. An empty endpoint selects DefaultEndpoint and a
// non-positive timeout disables the client-side limit.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := &http.Client{}
	if timeout > 0 {
		httpClient.Timeout = timeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		userAgent:  "ripe-addrlist",
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// RequestURL returns the URL queried for country.
func (c *Client) RequestURL(country string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", errors.NewConfigError(fmt.Sprintf("invalid registry endpoint %q", c.endpoint), err)
	}
	q := u.Query()
	q.Set("resource", strings.ToUpper(country))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchIPv4 returns the raw IPv4 entries, CIDR blocks and ranges, in registry order.
// There is no retry.
func (c *Client) FetchIPv4(ctx context.Context, country string) ([]string, error) {
	requestURL, err := c.RequestURL(country)
	if err != nil {
		return nil, err
	}

	log.Infof("Fetching %s IPv4 resources from %s", strings.ToUpper(country), requestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewRegistryError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewRegistryError("registry request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body so the message can be logged.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Debugf("Registry response body: %s", strings.TrimSpace(string(body)))
		return nil, errors.NewRegistryError(fmt.Sprintf("registry returned %s", resp.Status), nil)
	}

	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)

	var payload response
	if err := json.NewDecoder(bodyProxy).Decode(&payload); err != nil {
		return nil, errors.NewRegistryError("failed to decode registry response", err)
	}
	if payload.Status != "" && payload.Status != "ok" {
		return nil, errors.NewRegistryError(fmt.Sprintf("registry returned status %q: %s", payload.Status, payload.Message), nil)
	}

	log.Debugf("Registry response: %d bytes, MD5 %s, query time %s", bodyProxy.BytesRead(), bodyProxy.Checksum(), payload.Data.QueryTime)
	log.Infof("Found %d IPv4 entries", len(payload.Data.Resources.IPv4))

	return payload.Data.Resources.IPv4, nil
}

package tus

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	protocolVersion = "1.0.0"
	offsetMediaType = "application/offset+octet-stream"

	DefaultChunkSize = 25 << 20
)

// DefaultRetryDelays is the wait before each retry of a failed request
var DefaultRetryDelays = []time.Duration{0, 3 * time.Second, 5 * time.Second, 10 * time.Second}

// Config configures a Client
type Config struct {
	// Endpoint is the creation url, e.g. https://host/api/upload
	Endpoint    string
	Token       string
	ChunkSize   int64
	RetryDelays []time.Duration
}

// Client speaks the core and creation parts of the tus 1.0.0 protocol
type Client struct {
	http     *http.Client
	endpoint *url.URL
	config   Config
	logger   *slog.Logger
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("tus: invalid endpoint: %w", err)
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.RetryDelays == nil {
		cfg.RetryDelays = DefaultRetryDelays
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:     httpClient,
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Tus-Resumable", protocolVersion)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, action string, expected int) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != expected {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &TransferError{
			Method:     action,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			RequestID:  resp.Header.Get("X-Request-Id"),
		}
	}
	return resp, nil
}

// Create opens an upload of size bytes and returns its absolute url
func (c *Client) Create(ctx context.Context, size int64, metadata map[string]string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Upload-Length", strconv.FormatInt(size, 10))
	if len(metadata) > 0 {
		req.Header.Set("Upload-Metadata", encodeMetadata(metadata))
	}

	resp, err := c.do(req, "creating", http.StatusCreated)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrUploadNotCreated
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("tus: invalid location %q: %w", location, err)
	}
	return c.endpoint.ResolveReference(ref).String(), nil
}

// Offset asks the server how many bytes of the upload it holds
func (c *Client) Offset(ctx context.Context, uploadURL string) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodHead, uploadURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req, "resuming", http.StatusOK)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return parseOffset(resp)
}

// Patch sends body starting at offset and returns the new offset
func (c *Client) Patch(ctx context.Context, uploadURL string, offset int64, body io.Reader, length int64) (int64, error) {
	if length == 0 {
		body = http.NoBody
	}
	req, err := c.newRequest(ctx, http.MethodPatch, uploadURL, body)
	if err != nil {
		return 0, err
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", offsetMediaType)
	req.Header.Set("Upload-Offset", strconv.FormatInt(offset, 10))

	resp, err := c.do(req, "uploading", http.StatusNoContent)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return parseOffset(resp)
}

func parseOffset(resp *http.Response) (int64, error) {
	offset, err := strconv.ParseInt(resp.Header.Get("Upload-Offset"), 10, 64)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("tus: invalid Upload-Offset %q", resp.Header.Get("Upload-Offset"))
	}
	return offset, nil
}

func encodeMetadata(metadata map[string]string) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+" "+base64.StdEncoding.EncodeToString([]byte(metadata[k])))
	}
	return strings.Join(pairs, ",")
}

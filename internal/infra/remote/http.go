package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds settings for the HTTP uploader.
type Config struct {
	URL         string        `yaml:"url"`
	ContentType string        `yaml:"content_type"`
	AuthToken   string        `yaml:"auth_token"`
	Timeout     time.Duration `yaml:"-"`
}

// UnmarshalYAML accepts the timeout in Go duration syntax ("30s").
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		URL         string `yaml:"url"`
		ContentType string `yaml:"content_type"`
		AuthToken   string `yaml:"auth_token"`
		Timeout     string `yaml:"timeout"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	c.URL = raw.URL
	c.ContentType = raw.ContentType
	c.AuthToken = raw.AuthToken
	if raw.Timeout != "" {
		t, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		c.Timeout = t
	}
	return nil
}

// HTTPUploader posts payloads to a remote write endpoint.
type HTTPUploader struct {
	cfg    Config
	client *http.Client
}

// NewHTTPUploader creates an uploader for the configured endpoint.
func NewHTTPUploader(cfg Config) (*HTTPUploader, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote URL is not set")
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "application/octet-stream"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// errorBody is the optional JSON error envelope returned by the archive.
type errorBody struct {
	Status int `json:"status"`
}

// Upload posts the payload. Connectivity failures yield an UploadError
// without a transport status; non-2xx responses carry the HTTP status and,
// when the archive returns one, its internal status code.
func (u *HTTPUploader) Upload(ctx context.Context, r io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.URL, r)
	if err != nil {
		return &UploadError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", u.cfg.ContentType)
	if u.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+u.cfg.AuthToken)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return &UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	uerr := &UploadError{HTTPStatus: resp.StatusCode}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr == nil && len(body) > 0 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			uerr.Status = eb.Status
		}
	}
	return uerr
}

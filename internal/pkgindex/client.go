// Package pkgindex installs MicroPython packages from the official package
// index into a project's local lib directory.
//
// The index is treated as a black-box collaborator with two endpoints: a
// package's latest.json listing content-addressed files, and the files
// themselves keyed by hash. The only capability the rest of the system
// depends on is "install named package into directory D" with a
// success/failure outcome.
package pkgindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultIndexURL is the official MicroPython package index.
const DefaultIndexURL = "https://micropython.org/pi/v2"

// Client queries the package index.
type Client struct {
	// BaseURL is the index root. Defaults to DefaultIndexURL.
	BaseURL string

	// HTTPClient performs requests. Defaults to a client with a 30s
	// timeout.
	HTTPClient *http.Client
}

// NewClient returns a Client against the official index.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultIndexURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PackageInfo is the subset of a package's latest.json the installer needs.
type PackageInfo struct {
	// Version is the published version string.
	Version string `json:"version"`

	// Hashes lists [file path, content hash] pairs.
	Hashes [][2]string `json:"hashes"`
}

// indexDocument is the subset of the index root document used for
// standard-library detection.
type indexDocument struct {
	Packages []struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"packages"`
}

// StandardLibrary returns the set of package names that belong to the
// MicroPython standard library. Installing one of these directly is
// refused; as a transitive dependency it is silently skipped.
func (c *Client) StandardLibrary(ctx context.Context) (map[string]bool, error) {
	var doc indexDocument
	if err := c.getJSON(ctx, c.base()+"/index.json", &doc); err != nil {
		return nil, fmt.Errorf("fetching package index: %w", err)
	}

	stdlib := make(map[string]bool)
	for _, p := range doc.Packages {
		if strings.HasPrefix(p.Path, "python-stdlib") {
			stdlib[p.Name] = true
		}
	}
	return stdlib, nil
}

// Latest fetches a package's latest published file listing.
func (c *Client) Latest(ctx context.Context, name string) (*PackageInfo, error) {
	url := fmt.Sprintf("%s/package/py/%s/latest.json", c.base(), name)

	var info PackageInfo
	if err := c.getJSON(ctx, url, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchFile downloads one content-addressed file by hash.
func (c *Client) FetchFile(ctx context.Context, hash string) ([]byte, error) {
	if len(hash) < 2 {
		return nil, fmt.Errorf("invalid content hash %q", hash)
	}
	url := fmt.Sprintf("%s/file/%s/%s", c.base(), hash[:2], hash)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &IndexError{URL: url, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return DefaultIndexURL
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return client.Do(req)
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &IndexError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

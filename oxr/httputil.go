package oxr

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
)

// diskCache implements a simple disk cache for HTTP responses.
//
// Historical rates never change, entries never expire.
type diskCache struct {
	base http.RoundTripper
	dir  string
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If none is found, it proceeds with the actual HTTP
// request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	key := fmt.Sprintf("%s %s", req.Method, req.URL.String())
	key = fmt.Sprintf("oxr-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		slog.Debug("cache hit", "url", req.URL.Host+req.URL.Path)
		return cached, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status))
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		slog.Warn("cache write err (ignored)", "error", err)
	}
	return resp, nil
}

// get reads the cached response of key.
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response in the cache directory. Entries are renamed into place
// so that a concurrent get never reads a partial response.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(c.dir, key+".*")
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), filepath.Join(c.dir, key))
}

// apiError is the payload returned by openexchangerates on failure.
type apiError struct {
	Error       bool   `json:"error"`
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// jwget performs an HTTP GET request to the given address and decodes the
// JSON response body into the provided data structure, numbers as json.Number.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(buf.Bytes(), &apiErr) == nil && apiErr.Error {
			return fmt.Errorf("cannot http GET %v%v: %v: %s", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status, apiErr.Description)
		}
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	return dec.Decode(data)
}

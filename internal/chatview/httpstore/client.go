// Package httpstore adapts the groupchat backend's REST and SSE API to
// the chatview ports. Raw wire records are validated here before they
// become typed entities; a shape mismatch surfaces as ErrBadRecord
// instead of leaking half-parsed data into the view.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
)

var ErrBadRecord = errors.New("malformed record")

// APIError is a non-2xx response decoded from the server's error
// envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	// streamc has no timeout; SSE streams are long-lived
	streamc *http.Client
	log     *logger.Logger

	mu       sync.Mutex
	pathURLs map[string]string
	urlPaths map[string]string
}

func New(baseURL, token string, log *logger.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		streamc:  &http.Client{},
		log:      log.With("component", "httpstore"),
		pathURLs: make(map[string]string),
		urlPaths: make(map[string]string),
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "request failed"}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			apiErr.Code = envelope.Error.Code
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return nil
}

// rememberObject keeps the path<->URL mapping for objects this client
// uploaded, so attachments can be tied back to their storage paths for
// cleanup.
func (c *Client) rememberObject(path, url string) {
	if path == "" || url == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pathURLs[path] = url
	c.urlPaths[url] = path
}

func (c *Client) urlForPath(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pathURLs[path]
}

func (c *Client) pathForURL(url string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.urlPaths[url]
}

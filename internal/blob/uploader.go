package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
)

// ErrMissingToken is returned before any network call when the store access
// token is not configured.
var ErrMissingToken = errors.New("blob access token missing")

// StatusError reports a non-success response from the blob store.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("blob store returned status %d", e.StatusCode)
}

// Uploader stores raw bytes under a key derived from the owner and filename
// and returns a publicly reachable URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string, ownerID int) (string, error)
}

// Client uploads to the blob store. The primary path speaks the store's
// structured API; any failure there falls through silently to a raw
// authenticated PUT against the deterministic object URL. The fallback is
// attempted once and its failure is reported to the caller.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient constructs a Client. A nil httpc uses a default with a timeout.
func NewClient(baseURL, token string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   httpc,
	}
}

// Upload stores the bytes and returns the canonical public URL.
func (c *Client) Upload(ctx context.Context, data []byte, filename string, ownerID int) (string, error) {
	if c.token == "" {
		return "", ErrMissingToken
	}

	ctx, span := otel.Tracer("nexus-chat/blob").Start(ctx, "blob.upload")
	defer span.End()

	key := ObjectKey(ownerID, filename)

	if url, err := c.putAPI(ctx, key, data); err == nil {
		return url, nil
	}
	// primary failures are swallowed, the raw PUT is the fallback
	return c.putRaw(ctx, key, data)
}

// putAPI is the structured SDK-style path. The response must carry the
// stored object's URL.
func (c *Client) putAPI(ctx context.Context, key string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/"+key, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-API-Version", "7")
	req.Header.Set("X-Add-Random-Suffix", "0")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.URL == "" {
		return "", errors.New("blob api response missing url")
	}
	return body.URL, nil
}

// putRaw PUTs the bytes directly at the deterministic URL. When the response
// body carries a url field it wins over the deterministic URL.
func (c *Client) putRaw(ctx context.Context, key string, data []byte) (string, error) {
	objectURL := c.baseURL + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, objectURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Access", "public")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	var body struct {
		URL string `json:"url"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err == nil && json.Unmarshal(raw, &body) == nil && body.URL != "" {
		return body.URL, nil
	}
	return objectURL, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds the store key scoped by owner id and filename. Two
// uploads of the same filename by the same owner overwrite the same key.
func ObjectKey(ownerID int, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return fmt.Sprintf("chat-media/%d/%s", ownerID, name)
}

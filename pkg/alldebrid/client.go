package alldebrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/ratelimiter"
)

const (
	DefaultBaseURL = "https://api.alldebrid.com/v4"
	agent          = "gostremiomux"
)

// APIError is an error reported by AllDebrid, either in a success-status
// envelope or in the body of a non-2xx response.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AllDebrid API error: %s - %s", e.Code, e.Message)
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope[T any] struct {
	Status string        `json:"status"`
	Data   T             `json:"data"`
	Error  *apiErrorBody `json:"error,omitempty"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    ratelimiter.RateLimiter
}

func NewClient(httpClient *http.Client, limiter ratelimiter.RateLimiter) *Client {
	if limiter == nil {
		limiter = ratelimiter.Unlimited{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		limiter:    limiter,
	}
}

// SetBaseURL points the client at another API root.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// Magnet is one entry of an upload response.
type Magnet struct {
	ID    int64         `json:"id"`
	Hash  string        `json:"hash"`
	Name  string        `json:"name"`
	Size  int64         `json:"size"`
	Ready bool          `json:"ready"`
	Error *apiErrorBody `json:"error,omitempty"`
}

// Err returns the per-magnet error, if any.
func (m Magnet) Err() error {
	if m.Error == nil {
		return nil
	}
	return &APIError{Code: m.Error.Code, Message: m.Error.Message, StatusCode: http.StatusOK}
}

type uploadData struct {
	Magnets []Magnet `json:"magnets"`
}

// FileNode is a file or directory in a magnet's file tree.
type FileNode struct {
	Name    string     `json:"n"`
	Size    int64      `json:"s,omitempty"`
	Link    string     `json:"l,omitempty"`
	Entries []FileNode `json:"e,omitempty"`
}

// File is a downloadable leaf of the file tree.
type File struct {
	Path string
	Size int64
	Link string
}

type filesData struct {
	Magnets []struct {
		Files []FileNode    `json:"files"`
		Error *apiErrorBody `json:"error,omitempty"`
	} `json:"magnets"`
}

// Unlocked is the result of unlocking a hoster link.
type Unlocked struct {
	Link     string `json:"link"`
	Host     string `json:"host"`
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
	ID       string `json:"id"`
	Delayed  int    `json:"delayed,omitempty"`
}

func (c *Client) UploadMagnet(ctx context.Context, apiKey string, magnets []string) ([]Magnet, error) {
	form := url.Values{}
	for _, m := range magnets {
		form.Add("magnets[]", m)
	}

	data, err := call[uploadData](ctx, c, apiKey, httputil.Request{
		Method: http.MethodPost,
		URL:    c.endpoint("/magnet/upload", nil),
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	return data.Magnets, nil
}

// MagnetFiles lists the files of a magnet, flattening its directory tree.
func (c *Client) MagnetFiles(ctx context.Context, apiKey, magnetID string) ([]File, error) {
	params := url.Values{}
	params.Add("id[]", magnetID)

	data, err := call[filesData](ctx, c, apiKey, httputil.Request{
		Method: http.MethodGet,
		URL:    c.endpoint("/magnet/files", params),
	})
	if err != nil {
		return nil, err
	}
	if len(data.Magnets) == 0 {
		return nil, fmt.Errorf("magnet %s not found", magnetID)
	}

	m := data.Magnets[0]
	if m.Error != nil {
		return nil, &APIError{Code: m.Error.Code, Message: m.Error.Message, StatusCode: http.StatusOK}
	}
	return Flatten(m.Files), nil
}

func (c *Client) UnlockLink(ctx context.Context, apiKey, link string) (*Unlocked, error) {
	params := url.Values{}
	params.Set("link", link)

	data, err := call[Unlocked](ctx, c, apiKey, httputil.Request{
		Method: http.MethodGet,
		URL:    c.endpoint("/link/unlock", params),
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Flatten returns the leaves of a file tree in depth-first order with their
// slash-joined paths.
func Flatten(nodes []FileNode) []File {
	var files []File
	var walk func(prefix string, nodes []FileNode)
	walk = func(prefix string, nodes []FileNode) {
		for _, n := range nodes {
			path := n.Name
			if prefix != "" {
				path = prefix + "/" + n.Name
			}
			if len(n.Entries) > 0 {
				walk(path, n.Entries)
				continue
			}
			files = append(files, File{Path: path, Size: n.Size, Link: n.Link})
		}
	}
	walk("", nodes)
	return files
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("agent", agent)
	return c.baseURL + path + "?" + params.Encode()
}

func call[T any](ctx context.Context, c *Client, apiKey string, r httputil.Request) (T, error) {
	var env envelope[T]
	if err := c.limiter.Wait(ctx); err != nil {
		return env.Data, err
	}

	r.Headers = map[string]string{"Authorization": "Bearer " + apiKey}
	if err := httputil.DoJSON(ctx, c.httpClient, r, &env); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			var failed envelope[json.RawMessage]
			if json.Unmarshal([]byte(se.Body), &failed) == nil && failed.Error != nil {
				return env.Data, &APIError{Code: failed.Error.Code, Message: failed.Error.Message, StatusCode: se.StatusCode}
			}
		}
		return env.Data, err
	}

	if env.Status != "success" {
		if env.Error != nil {
			return env.Data, &APIError{Code: env.Error.Code, Message: env.Error.Message, StatusCode: http.StatusOK}
		}
		return env.Data, fmt.Errorf("AllDebrid API error: %s", env.Status)
	}
	return env.Data, nil
}

// Package realdebrid is a minimal Real-Debrid REST client covering the
// torrent and unrestrict endpoints.
package realdebrid

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

const DefaultBaseURL = "https://api.real-debrid.com/rest/1.0"

// Torrent statuses
const (
	StatusWaitingFiles = "waiting_files_selection"
	StatusDownloaded   = "downloaded"
	StatusMagnetError  = "magnet_error"
	StatusError        = "error"
	StatusVirus        = "virus"
	StatusDead         = "dead"
)

// APIError is the error body Real-Debrid sends with non-2xx responses.
type APIError struct {
	Code       int    `json:"error_code"`
	Message    string `json:"error"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Real-Debrid API error %d: %s", e.Code, e.Message)
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

type Added struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

type TorrentFile struct {
	ID       int    `json:"id"`
	Path     string `json:"path"`
	Bytes    int64  `json:"bytes"`
	Selected int    `json:"selected"`
}

type TorrentInfo struct {
	ID       string        `json:"id"`
	Filename string        `json:"filename"`
	Hash     string        `json:"hash"`
	Bytes    int64         `json:"bytes"`
	Status   string        `json:"status"`
	Progress float64       `json:"progress"`
	Files    []TorrentFile `json:"files"`
	Links    []string      `json:"links"`
}

// SelectedFiles pairs every selected file with its hoster link. Links are
// listed in the order of the selected files.
func (t *TorrentInfo) SelectedFiles() ([]TorrentFile, []string) {
	var files []TorrentFile
	for _, f := range t.Files {
		if f.Selected == 1 {
			files = append(files, f)
		}
	}
	links := make([]string, len(files))
	for i := range files {
		if i < len(t.Links) {
			links[i] = t.Links[i]
		}
	}
	return files, links
}

type Unrestricted struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Filesize   int64  `json:"filesize"`
	Link       string `json:"link"`
	Host       string `json:"host"`
	Download   string `json:"download"`
	Streamable int    `json:"streamable"`
}

func (c *Client) AddMagnet(ctx context.Context, token, magnet string) (*Added, error) {
	var out Added
	err := c.do(ctx, token, httputil.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/torrents/addMagnet",
		Form:   url.Values{"magnet": {magnet}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Info(ctx context.Context, token, id string) (*TorrentInfo, error) {
	var out TorrentInfo
	err := c.do(ctx, token, httputil.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/torrents/info/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectFiles starts the download of the given file ids, or of every file
// when ids is empty.
func (c *Client) SelectFiles(ctx context.Context, token, id string, ids []int) error {
	files := "all"
	if len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, fid := range ids {
			parts[i] = fmt.Sprint(fid)
		}
		files = strings.Join(parts, ",")
	}
	return c.do(ctx, token, httputil.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/torrents/selectFiles/" + url.PathEscape(id),
		Form:   url.Values{"files": {files}},
	}, nil)
}

func (c *Client) Unrestrict(ctx context.Context, token, link string) (*Unrestricted, error) {
	var out Unrestricted
	err := c.do(ctx, token, httputil.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/unrestrict/link",
		Form:   url.Values{"link": {link}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, token string, r httputil.Request, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	r.Headers = map[string]string{"Authorization": "Bearer " + token}
	err := httputil.DoJSON(ctx, c.httpClient, r, out)
	var se *httputil.StatusError
	if errors.As(err, &se) {
		var apiErr APIError
		if json.Unmarshal([]byte(se.Body), &apiErr) == nil && (apiErr.Code != 0 || apiErr.Message != "") {
			apiErr.StatusCode = se.StatusCode
			return &apiErr
		}
	}
	return err
}

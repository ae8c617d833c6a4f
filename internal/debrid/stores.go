package debrid

import (
	"context"
	"net/http"
	"strconv"

	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/pkg/alldebrid"
	"github.com/amaumene/gostremiomux/pkg/ratelimiter"
	"github.com/amaumene/gostremiomux/pkg/realdebrid"
)

// NewProviders builds the supported stores keyed by provider id. Each store
// gets one rate limiter shared by all users.
func NewProviders(httpClient *http.Client) map[string]Provider {
	return map[string]Provider{
		constants.StoreAllDebrid: NewAllDebrid(alldebrid.NewClient(httpClient,
			ratelimiter.NewTokenBucket(constants.AllDebridRateBurst, constants.AllDebridRateLimit))),
		constants.StoreRealDebrid: NewRealDebrid(realdebrid.NewClient(httpClient,
			ratelimiter.NewTokenBucket(constants.RealDebridRateBurst, constants.RealDebridRateLimit))),
	}
}

// AllDebrid adapts an AllDebrid client to Provider.
type AllDebrid struct {
	client *alldebrid.Client
}

func NewAllDebrid(client *alldebrid.Client) *AllDebrid {
	return &AllDebrid{client: client}
}

func (a *AllDebrid) AddMagnet(ctx context.Context, token, magnet string) (Magnet, error) {
	magnets, err := a.client.UploadMagnet(ctx, token, []string{magnet})
	if err != nil {
		return Magnet{}, err
	}
	if len(magnets) == 0 {
		return Magnet{}, &contentError{status: "empty upload response"}
	}
	if err := magnets[0].Err(); err != nil {
		return Magnet{}, err
	}
	return Magnet{ID: strconv.FormatInt(magnets[0].ID, 10), Ready: magnets[0].Ready}, nil
}

func (a *AllDebrid) MagnetFiles(ctx context.Context, token, id string) ([]File, error) {
	files, err := a.client.MagnetFiles(ctx, token, id)
	if err != nil {
		return nil, err
	}

	out := make([]File, len(files))
	for i, f := range files {
		out[i] = File{Index: i, Path: f.Path, Size: f.Size, Link: f.Link}
	}
	return out, nil
}

func (a *AllDebrid) Unlock(ctx context.Context, token string, file File) (string, error) {
	u, err := a.client.UnlockLink(ctx, token, file.Link)
	if err != nil {
		return "", err
	}
	if u.Link == "" {
		if u.Delayed > 0 {
			return "", errPending
		}
		return "", &contentError{status: "empty unlock link"}
	}
	return u.Link, nil
}

// RealDebrid adapts a Real-Debrid client to Provider. Adding a magnet also
// selects all of its files so the store starts downloading.
type RealDebrid struct {
	client *realdebrid.Client
}

func NewRealDebrid(client *realdebrid.Client) *RealDebrid {
	return &RealDebrid{client: client}
}

func (r *RealDebrid) AddMagnet(ctx context.Context, token, magnet string) (Magnet, error) {
	added, err := r.client.AddMagnet(ctx, token, magnet)
	if err != nil {
		return Magnet{}, err
	}

	info, err := r.client.Info(ctx, token, added.ID)
	if err != nil {
		return Magnet{}, err
	}
	if info.Status == realdebrid.StatusWaitingFiles {
		if err := r.client.SelectFiles(ctx, token, added.ID, nil); err != nil {
			return Magnet{}, err
		}
		if info, err = r.client.Info(ctx, token, added.ID); err != nil {
			return Magnet{}, err
		}
	}

	switch info.Status {
	case realdebrid.StatusMagnetError, realdebrid.StatusError, realdebrid.StatusVirus, realdebrid.StatusDead:
		return Magnet{}, &contentError{status: info.Status}
	}
	return Magnet{ID: added.ID, Ready: info.Status == realdebrid.StatusDownloaded}, nil
}

func (r *RealDebrid) MagnetFiles(ctx context.Context, token, id string) ([]File, error) {
	info, err := r.client.Info(ctx, token, id)
	if err != nil {
		return nil, err
	}

	files, links := info.SelectedFiles()
	out := make([]File, 0, len(files))
	for i, f := range files {
		out = append(out, File{Index: f.ID - 1, Path: f.Path, Size: f.Bytes, Link: links[i]})
	}
	return out, nil
}

func (r *RealDebrid) Unlock(ctx context.Context, token string, file File) (string, error) {
	if file.Link == "" {
		return "", errPending
	}
	u, err := r.client.Unrestrict(ctx, token, file.Link)
	if err != nil {
		return "", err
	}
	return u.Download, nil
}

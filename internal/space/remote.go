package space

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteResolver fetches space data from the spaces service over HTTP.
// Any transport failure, timeout or unexpected status maps to
// ErrUnavailable; the call happens before any local transaction opens,
// so a failing spaces service can never leave partial reservation state.
type RemoteResolver struct {
	baseURL string
	client  *http.Client
}

// NewRemoteResolver creates a resolver against baseURL (e.g.
// "http://spaces:8000/v1"). timeout bounds every round-trip.
func NewRemoteResolver(baseURL string, timeout time.Duration) *RemoteResolver {
	return &RemoteResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// remoteSpace mirrors the spaces service response body.
type remoteSpace struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func (r *RemoteResolver) Resolve(ctx context.Context, id int64, credential string) (Snapshot, error) {
	url := fmt.Sprintf("%s/spaces/%d", r.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build spaces request failed: %w", err)
	}
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Snapshot{}, ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Snapshot{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Snapshot{}, ErrUnavailable
	}

	var rs remoteSpace
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		return Snapshot{}, ErrUnavailable
	}

	if !rs.IsActive {
		return Snapshot{}, ErrInactive
	}

	return Snapshot{
		ID:          rs.ID,
		Name:        rs.Name,
		Location:    rs.Location,
		Description: rs.Description,
	}, nil
}

// ResolveDefault is not supported against a remote spaces service; every
// reservation must name its space explicitly.
func (r *RemoteResolver) ResolveDefault(ctx context.Context, credential string) (Snapshot, error) {
	return Snapshot{}, ErrNotFound
}

package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pool_watch/internal/domain"
)

// poolResponse mirrors the open-pool status API shape. Required fields are
// pointers so a missing key is distinguishable from a zero value.
type poolResponse struct {
	Hashrate    *float64 `json:"hashrate"`
	MinersTotal *uint    `json:"minersTotal"`
	Nodes       []struct {
		Height json.Number `json:"height"` // some pools report this as a string
	} `json:"nodes"`
	Stats *struct {
		LastBlockFound int64 `json:"lastBlockFound"`
	} `json:"stats"`
}

// Fetcher polls every configured pool endpoint for its current status.
type Fetcher struct {
	endpoints  []PoolEndpoint
	httpClient *http.Client
}

// NewFetcher creates a fetcher over the configured endpoints.
// Every request carries a hard deadline so one stuck pool cannot stall a
// tick indefinitely.
func NewFetcher(endpoints []PoolEndpoint) *Fetcher {
	return &Fetcher{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchAll issues one request per endpoint concurrently and normalizes the
// responses. All-or-nothing: if any single fetch fails or a response lacks an
// expected field, the whole batch fails.
func (f *Fetcher) FetchAll(ctx context.Context) ([]domain.PoolSnapshot, error) {
	snapshots := make([]domain.PoolSnapshot, len(f.endpoints))
	errs := make([]error, len(f.endpoints))

	var wg sync.WaitGroup
	for i, ep := range f.endpoints {
		wg.Add(1)
		go func(i int, ep PoolEndpoint) {
			defer wg.Done()
			snapshots[i], errs[i] = f.fetchOne(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &domain.FetchError{Pool: f.endpoints[i].Name, Err: err}
		}
	}
	return snapshots, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, ep PoolEndpoint) (domain.PoolSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return domain.PoolSnapshot{}, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return domain.PoolSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PoolSnapshot{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PoolSnapshot{}, err
	}

	var data poolResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.PoolSnapshot{}, err
	}

	switch {
	case len(data.Nodes) == 0:
		return domain.PoolSnapshot{}, fmt.Errorf("%w: nodes", domain.ErrMissingField)
	case data.Hashrate == nil:
		return domain.PoolSnapshot{}, fmt.Errorf("%w: hashrate", domain.ErrMissingField)
	case data.MinersTotal == nil:
		return domain.PoolSnapshot{}, fmt.Errorf("%w: minersTotal", domain.ErrMissingField)
	case data.Stats == nil:
		return domain.PoolSnapshot{}, fmt.Errorf("%w: stats.lastBlockFound", domain.ErrMissingField)
	}

	// The first node entry carries the pool's reported height.
	height, err := strconv.ParseUint(data.Nodes[0].Height.String(), 10, 64)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("parse height %q: %w", data.Nodes[0].Height, err)
	}

	return domain.PoolSnapshot{
		Name:           ep.Name,
		Height:         height,
		Hashrate:       *data.Hashrate,
		Miners:         *data.MinersTotal,
		LastBlockFound: data.Stats.LastBlockFound,
	}, nil
}

package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"github.com/pedropalhari/video-poster-image-generator/internal/domain/port"
)

// Fetcher retrieves raw video bytes for a URL. One GET per call, no
// retries, no caching. URLs with the minio:// scheme are resolved
// through object storage instead of HTTP.
type Fetcher struct {
	client  *http.Client
	objects port.ArchiveStorage
}

func NewFetcher(client *http.Client, objects port.ArchiveStorage) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, objects: objects}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &entity.FetchError{URL: rawURL, Err: err}
	}

	if u.Scheme == "minio" {
		return f.fetchObject(ctx, rawURL, u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &entity.FetchError{URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &entity.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &entity.FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entity.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

func (f *Fetcher) fetchObject(ctx context.Context, rawURL string, u *url.URL) ([]byte, error) {
	if f.objects == nil {
		return nil, &entity.FetchError{URL: rawURL, Err: fmt.Errorf("object storage not configured")}
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, &entity.FetchError{URL: rawURL, Err: fmt.Errorf("minio url must be minio://bucket/key")}
	}
	data, err := f.objects.FetchObject(ctx, u.Host, key)
	if err != nil {
		return nil, &entity.FetchError{URL: rawURL, Err: err}
	}
	return data, nil
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/AmitMY/chimera/internal/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"
)

// Loader reads whole documents from a local path, an http(s) URL or an
// s3://bucket/key URI. Successful reads are cached per URI; concurrent reads
// of the same URI share one fetch. Failures are not cached.
type Loader struct {
	s3Client   *s3.Client
	httpClient *http.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewLoaderParams configures NewLoader. S3 may be nil when no s3 URIs are
// used; HTTP defaults to http.DefaultClient.
type NewLoaderParams struct {
	S3   *s3.Client
	HTTP *http.Client
}

func NewLoader(params NewLoaderParams) *Loader {
	httpClient := params.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Loader{
		s3Client:   params.S3,
		httpClient: httpClient,
		cache:      make(map[string][]byte),
	}
}

// Load returns the bytes behind uri.
func (l *Loader) Load(ctx context.Context, uri string) ([]byte, error) {
	l.cacheMu.RLock()
	if cached, ok := l.cache[uri]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(uri, func() (any, error) {
		data, err := l.fetch(ctx, uri)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[uri] = data
		l.cacheMu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Forget drops the cached copy of uri so the next Load fetches it again.
func (l *Loader) Forget(uri string) {
	l.cacheMu.Lock()
	delete(l.cache, uri)
	l.cacheMu.Unlock()
}

func (l *Loader) fetch(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		if l.s3Client == nil {
			return nil, fmt.Errorf("no S3 client configured for %s", uri)
		}
		bucket, key, err := storage.SplitS3URI(uri)
		if err != nil {
			return nil, err
		}
		return storage.GetFile(ctx, l.s3Client, bucket, key)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return l.fetchHTTP(ctx, uri)
	default:
		data, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", uri, err)
		}
		return data, nil
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	res, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", uri, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// LoadJSON loads uri and decodes it into a T.
func LoadJSON[T any](ctx context.Context, l *Loader, uri string) (T, error) {
	var out T
	data, err := l.Load(ctx, uri)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", uri, err)
	}
	return out, nil
}

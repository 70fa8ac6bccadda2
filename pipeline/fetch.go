package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher resolves a document reference (URL or local path) to its raw text.
type Fetcher interface {
	Fetch(ctx context.Context, reference string) (string, error)
}

type defaultFetcher struct {
	client *http.Client
}

func (f *defaultFetcher) Fetch(ctx context.Context, reference string) (string, error) {
	if isURL(reference) {
		return f.fetchURL(ctx, reference)
	}

	data, err := os.ReadFile(reference)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (f *defaultFetcher) fetchURL(ctx context.Context, reference string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reference, nil)
	if err != nil {
		return "", err
	}

	rsp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: http %d", reference, rsp.StatusCode)
	}

	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func isURL(reference string) bool {
	return strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://")
}

func newDefaultFetcher(timeout time.Duration) Fetcher {
	return &defaultFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxAssetBytes caps a remote asset download.
const maxAssetBytes = 8 << 20

// HTTPSource downloads assets from a document store over HTTP. Relative
// refs are resolved against BaseURL; absolute http(s) refs are used as is.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (h *HTTPSource) url(ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if h.BaseURL == "" {
		return "", fmt.Errorf("relative asset %q without a base URL", ref)
	}
	return url.JoinPath(h.BaseURL, ref)
}

func (h *HTTPSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := h.url(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", u, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset %s exceeds %d bytes", ref, maxAssetBytes)
	}
	return data, nil
}

// Package metadata fetches agent registration metadata referenced by an
// on-chain token URI. HTTP(S) URIs are fetched directly, ipfs:// URIs are
// served through the public gateway or, when configured, a local IPFS node.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
)

// FetchTimeout bounds every remote metadata fetch. Lookups degrade to
// "no metadata" rather than stalling an identity read.
const FetchTimeout = 5 * time.Second

// DefaultIPFSGateway resolves ipfs:// URIs when no node is configured.
const DefaultIPFSGateway = "https://ipfs.io/ipfs/"

// Fetcher retrieves and parses remote metadata documents.
type Fetcher struct {
	client  *http.Client
	gateway string
	shell   *shell.Shell
	log     *slog.Logger
}

// NewFetcher creates a Fetcher using the default gateway and timeout.
func NewFetcher(log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: FetchTimeout},
		gateway: DefaultIPFSGateway,
		log:     log,
	}
}

// SetGateway overrides the HTTP gateway used for ipfs:// URIs.
func (f *Fetcher) SetGateway(gateway string) {
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	f.gateway = gateway
}

// UseIPFSNode routes ipfs:// URIs through the API of the given IPFS node
// (host:port) instead of an HTTP gateway. Node requests carry the same
// timeout as gateway fetches.
func (f *Fetcher) UseIPFSNode(apiAddr string) {
	f.shell = shell.NewShell(apiAddr)
	f.shell.SetTimeout(FetchTimeout)
}

// Supports reports whether Fetch knows how to resolve the URI scheme.
func Supports(uri string) bool {
	return strings.HasPrefix(uri, "http://") ||
		strings.HasPrefix(uri, "https://") ||
		strings.HasPrefix(uri, "ipfs://")
}

// Fetch retrieves the document behind uri and parses it as JSON. It fails
// on unsupported schemes, timeouts, non-2xx responses and parse errors;
// callers are expected to treat any failure as "metadata unavailable".
func (f *Fetcher) Fetch(ctx context.Context, uri string) (map[string]any, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	var (
		body []byte
		err  error
	)
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		body, err = f.fetchIPFS(ctx, strings.TrimPrefix(uri, "ipfs://"))
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		body, err = f.fetchHTTP(ctx, uri)
	default:
		return nil, fmt.Errorf("unsupported metadata URI scheme: %s", uri)
	}
	if err != nil {
		f.log.Debug("metadata fetch failed",
			slog.String("uri", uri),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse metadata from %s: %w", uri, err)
	}

	f.log.Debug("fetched metadata",
		slog.String("uri", uri),
		slog.Int("size", len(body)),
		slog.Duration("duration", time.Since(start)))
	return parsed, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (f *Fetcher) fetchIPFS(ctx context.Context, cid string) ([]byte, error) {
	if f.shell == nil {
		return f.fetchHTTP(ctx, f.gateway+cid)
	}

	// Issue the cat through the request builder so the deadline set in
	// Fetch applies; shell.Cat ignores the caller's context.
	resp, err := f.shell.Request("cat", "/ipfs/"+cid).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ipfs://%s: %w", cid, err)
	}
	defer resp.Close()
	if resp.Error != nil {
		return nil, fmt.Errorf("fetch ipfs://%s: %w", cid, resp.Error)
	}

	return io.ReadAll(resp.Output)
}

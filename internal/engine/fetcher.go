package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-wedding/internal/config"
)

// VCardFetcher retrieves an address book over the network.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads address books from CardDAV or WebDAV shares.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with the default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: config.DefaultHTTPTimeout}}
}

// Fetch opens the address book at targetURL. The body is capped at
// config.MaxHTTPResponseSize and must be closed by the caller.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// query strings may carry share tokens
	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrBuildRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgServerStatus, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %d", config.ErrFetchStatus, resp.StatusCode)
	}
	log.Debug(config.MsgAddressBookOpened, config.LogKeySizeBytes, resp.ContentLength)

	return limitedBody{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedBody caps reads but closes the underlying connection.
type limitedBody struct {
	io.Reader
	io.Closer
}

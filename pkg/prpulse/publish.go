package prpulse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// documentFilename is the name of the report file inside the gist.
const documentFilename = "open-prs.md"

// PublishResult reports where a published document landed.
type PublishResult struct {
	ID      string
	HTMLURL string
	Created bool
}

// Publisher writes rendered reports to the GitHub gist API. Whether it
// creates a new gist or updates an existing one is decided once per Publish
// call by the presence of a gist id; either way exactly one write is issued.
type Publisher struct {
	gist interface {
		create(ctx context.Context, gist *githubGist) (*gistResult, error)
		update(ctx context.Context, id string, gist *githubGist) (*gistResult, error)
	}
	logger *slog.Logger
	token  string
	api    string
}

// PublisherOption is a function that configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets a custom logger for the publisher.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithPublisherHTTPClient sets a custom HTTP client. Unlike the read client,
// the transport is used as given: publish requests are issued at most once,
// so no retry wrapping is applied.
func WithPublisherHTTPClient(httpClient *http.Client) PublisherOption {
	return func(p *Publisher) {
		p.gist = &gistClient{client: httpClient, token: p.token, api: p.api}
	}
}

// WithPublisherBaseURL points the publisher at a different API endpoint,
// such as a GitHub Enterprise Server instance.
func WithPublisherBaseURL(baseURL string) PublisherOption {
	return func(p *Publisher) {
		p.api = strings.TrimSuffix(baseURL, "/")
		if gc, ok := p.gist.(*gistClient); ok {
			gc.api = p.api
		}
	}
}

// NewPublisher creates a Publisher with the given GitHub token. The token
// needs gist scope; it may differ from the token used to read the source
// repository.
func NewPublisher(token string, opts ...PublisherOption) *Publisher {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeoutSec * time.Second,
	}
	p := &Publisher{
		logger: slog.Default(),
		token:  token,
		api:    githubAPI,
		gist: &gistClient{
			client: &http.Client{
				Transport: transport,
				Timeout:   30 * time.Second,
			},
			token: token,
			api:   githubAPI,
		},
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes a document to the gist sink: update when gistID is set,
// create otherwise. A rejected write is fatal and is not reissued; the
// caller decides whether a whole new run is warranted.
func (p *Publisher) Publish(ctx context.Context, gistID, title, body string) (*PublishResult, error) {
	gist := &githubGist{
		Description: title,
		Public:      false,
		Files: map[string]gistFile{
			documentFilename: {Content: body},
		},
	}

	if gistID != "" {
		p.logger.InfoContext(ctx, "updating report document", "gist_id", gistID)
		result, err := p.gist.update(ctx, gistID, gist)
		if err != nil {
			return nil, fmt.Errorf("updating gist %s: %w: %w", gistID, ErrPublishRejected, err)
		}
		p.logger.InfoContext(ctx, "report document updated", "gist_id", result.ID, "url", result.HTMLURL)
		return &PublishResult{ID: result.ID, HTMLURL: result.HTMLURL}, nil
	}

	p.logger.InfoContext(ctx, "creating report document")
	result, err := p.gist.create(ctx, gist)
	if err != nil {
		return nil, fmt.Errorf("creating gist: %w: %w", ErrPublishRejected, err)
	}
	p.logger.InfoContext(ctx, "report document created", "gist_id", result.ID, "url", result.HTMLURL)
	return &PublishResult{ID: result.ID, HTMLURL: result.HTMLURL, Created: true}, nil
}

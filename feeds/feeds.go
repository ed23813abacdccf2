package feeds

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Default timeout for HTTP requests
const defaultRequestTimeout = 15 * time.Second

// Default User-Agent header sent with every request
const defaultUserAgent = "Mozilla/5.0 (RSS Scraper Practice)"

// ErrEmptyURL is returned when a feed has no URL
var ErrEmptyURL = errors.New("empty feed URL")

// Options for the Feeds object
type Options struct {
	// User-Agent header for requests
	UserAgent string
	// Timeout for each request
	Timeout time.Duration
	// If true, HTML tags are removed from summaries
	StripHTML bool
	// If true, items with an empty title or summary are completed with the OpenGraph metadata of their page
	EnrichMetadata bool
}

// Feeds fetches feeds and turns their entries into candidates for the store
type Feeds struct {
	log        *log.Entry
	client     *http.Client
	userAgent  string
	normalizer *Normalizer
	enrich     bool
	now        func() time.Time
}

// Init the object
func (f *Feeds) Init(opts Options) error {
	// Init the logger
	f.log = log.WithField("component", "feeds")

	f.userAgent = opts.UserAgent
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}

	// Init the HTTP client
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	f.client = &http.Client{
		Timeout: timeout,
	}

	f.normalizer = NewNormalizer(opts.StripHTML)
	f.enrich = opts.EnrichMetadata
	f.now = time.Now

	return nil
}

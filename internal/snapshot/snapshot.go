// Package snapshot fetches contracts from files or URLs and persists
// point-in-time copies. Nothing is cached: every call reads its source again.
package snapshot

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/order"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager reads and writes one snapshot and downloads fresh copies.
type Manager struct {
	store    Store
	url      string
	settings Settings
	client   *http.Client
	log      *zap.Logger
}

// New returns a Manager over store. sourceURL is the default for
// DownloadFromURL and may be empty.
func New(store Store, sourceURL string, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	return &Manager{
		store:    store,
		url:      sourceURL,
		settings: settings,
		client:   &http.Client{Timeout: settings.HTTPTimeout},
		log:      log,
	}
}

// Read loads the persisted snapshot.
func (m *Manager) Read(ctx context.Context) (*Document, error) {
	if m.store == nil {
		return nil, errs.New(errs.IO, "", "no snapshot store configured")
	}
	data, err := m.store.Load(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.IO, m.store.Location(), err, "read snapshot")
	}
	m.log.Debug("read snapshot", zap.String("location", m.store.Location()), zap.Int("bytes", len(data)))
	return m.parse(ctx, data, m.store.Location())
}

// DownloadFromPath loads a contract from a local file.
func (m *Manager) DownloadFromPath(ctx context.Context, path string) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.New(errs.IO, "", "input path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, path, err, "read contract")
	}
	return m.parse(ctx, data, path)
}

// DownloadFromURL fetches a contract over http(s). An empty rawURL uses the
// Manager's configured source.
func (m *Manager) DownloadFromURL(ctx context.Context, rawURL string) (*Document, error) {
	if strings.TrimSpace(rawURL) == "" {
		rawURL = m.url
	}
	if strings.TrimSpace(rawURL) == "" {
		return nil, errs.New(errs.IO, "", "no source URL configured")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, errs.New(errs.IO, rawURL, "not an absolute URL")
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return nil, errs.New(errs.IO, rawURL, "unsupported URL scheme %q (only http/https allowed)", scheme)
	}
	data, err := fetchWithRetry(ctx, m.client, rawURL, m.settings, m.log)
	if err != nil {
		return nil, errs.Wrap(errs.IO, rawURL, err, "fetch contract")
	}
	m.log.Info("downloaded contract", zap.String("url", rawURL), zap.Int("bytes", len(data)))
	return m.parse(ctx, data, rawURL)
}

func (m *Manager) parse(ctx context.Context, data []byte, location string) (*Document, error) {
	doc, err := Parse(ctx, data, location)
	if err != nil {
		return nil, err
	}
	if len(doc.Findings) > 0 {
		m.log.Warn("contract has validation findings", zap.String("location", location), zap.Int("count", len(doc.Findings)))
		for _, f := range doc.Findings {
			m.log.Debug("validation finding", zap.String("location", location), zap.Error(f))
		}
	}
	return doc, nil
}

// Download loads input, which is an http(s) URL or a local path.
func (m *Manager) Download(ctx context.Context, input string) (*Document, error) {
	if IsURL(input) {
		return m.DownloadFromURL(ctx, input)
	}
	return m.DownloadFromPath(ctx, input)
}

// Write persists the source of doc as key-sorted YAML.
func (m *Manager) Write(ctx context.Context, doc *Document) error {
	if m.store == nil {
		return errs.New(errs.IO, "", "no snapshot store configured")
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, data); err != nil {
		return errs.Wrap(errs.IO, m.store.Location(), err, "write snapshot")
	}
	m.log.Info("wrote snapshot", zap.String("location", m.store.Location()), zap.Int("bytes", len(data)))
	return nil
}

// Marshal renders the source of doc as YAML with every mapping sorted by
// key. Nothing outside the Contract view is lost.
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil || doc.Source == nil {
		return nil, errs.New(errs.IO, "", "snapshot has no source document")
	}
	sorted := order.Node(doc.Source)
	blockStyle(sorted)
	data, err := yaml.Marshal(sorted)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "", err, "encode snapshot")
	}
	return data, nil
}

// blockStyle drops flow style so JSON sources snapshot as block YAML.
func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// IsURL reports whether input is an http or https URL.
func IsURL(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

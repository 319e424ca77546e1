package assetresolver

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fetchTimeout = 60 * time.Second

	// Bare filenames are resolved under this canonical prefix.
	defaultMediaPrefix = "/uploads/imoveis/"
)

// Resolver turns a stored media reference (absolute URL, root-relative path,
// or bare filename) into a byte source. Local files win over the public URL
// when both are available: no network hop.
type Resolver struct {
	publicBaseURL string
	localRoot     string
	httpClient    *http.Client
}

func NewResolver(publicBaseURL, localRoot string) *Resolver {
	return &Resolver{
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		localRoot:     localRoot,
		httpClient:    &http.Client{Timeout: fetchTimeout},
	}
}

// Resolve returns nil on any failure; the reason is logged and the caller
// skips the asset.
func (r *Resolver) Resolve(ctx context.Context, reference string) *domain.AssetSource {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "AssetResolver",
		"reference": reference,
	})

	ref := strings.TrimSpace(reference)
	if ref == "" {
		logger.Warn("Empty media reference, skipping", nil)
		return nil
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return r.fetchRemote(ctx, ref, logger)
	}

	relPath := ref
	if !strings.HasPrefix(relPath, "/") {
		relPath = defaultMediaPrefix + relPath
	}

	if src := r.openLocal(relPath, logger); src != nil {
		return src
	}

	if r.publicBaseURL == "" {
		logger.Warn("Reference not found locally and no public base URL is configured", nil)
		return nil
	}
	return r.fetchRemote(ctx, r.publicBaseURL+relPath, logger)
}

func (r *Resolver) openLocal(relPath string, logger port.LoggerPort) *domain.AssetSource {
	if r.localRoot == "" {
		return nil
	}

	fullPath := filepath.Join(r.localRoot, filepath.FromSlash(relPath))
	file, err := os.Open(fullPath)
	if err != nil {
		// Not an error by itself - the remote fallback may still work.
		logger.Debug("Local file not available", port.Fields{"path": fullPath})
		return nil
	}

	return &domain.AssetSource{
		Filename:    SanitizeFilename(path.Base(relPath)),
		ContentType: mime.TypeByExtension(path.Ext(relPath)),
		Body:        file,
	}
}

func (r *Resolver) fetchRemote(ctx context.Context, rawURL string, logger port.LoggerPort) *domain.AssetSource {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		logger.Warn("Unparseable media URL", port.Fields{"url": rawURL, "error": err.Error()})
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		logger.Warn("Failed to build asset request", port.Fields{"url": rawURL, "error": err.Error()})
		return nil
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		logger.Warn("Failed to fetch asset", port.Fields{"url": rawURL, "error": err.Error()})
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		logger.Warn("Asset fetch returned non-success status", port.Fields{"url": rawURL, "status_code": resp.StatusCode})
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(parsed.Path))
	}

	return &domain.AssetSource{
		Filename:    SanitizeFilename(path.Base(parsed.Path)),
		ContentType: contentType,
		Body:        resp.Body,
	}
}

var diacriticsRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFilename makes a reference safe to use as an upload identifier:
// diacritics are stripped first (fachada-condomínio.jpg and
// fachada-condominio.jpg must dedup to the same remote file), then anything
// outside [A-Za-z0-9._-] becomes '_'.
func SanitizeFilename(name string) string {
	if stripped, _, err := transform.String(diacriticsRemover, name); err == nil {
		name = stripped
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amankumarsingh77/region_tfidf/config"
)

var ErrNotFound = errors.New("not found in tokenizer registry")

// Registry fetches tokenizer files from a HuggingFace-style model hub:
// <base>/<repo>/resolve/<revision>/<file>.
type Registry struct {
	client   *http.Client
	headers  http.Header
	baseURL  string
	revision string
	cacheDir string
}

func NewRegistry(cfg *config.TokenizerConfig) *Registry {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	headers := http.Header{
		"User-Agent": []string{cfg.UserAgent},
		"Accept":     []string{"*/*"},
	}
	if token := os.Getenv("HF_TOKEN"); token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	revision := cfg.Revision
	if revision == "" {
		revision = "main"
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(dir, "region-tfidf")
		} else {
			cacheDir = filepath.Join(os.TempDir(), "region-tfidf")
		}
	}
	return &Registry{
		client:   client,
		headers:  headers,
		baseURL:  strings.TrimRight(cfg.RegistryURL, "/"),
		revision: revision,
		cacheDir: cacheDir,
	}
}

// ValidRepoID accepts "owner/name" ids without path traversal.
func ValidRepoID(repo string) bool {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return false
		}
	}
	return true
}

func (r *Registry) fileURL(repo, file string) string {
	return fmt.Sprintf("%s/%s/resolve/%s/%s", r.baseURL, repo, url.PathEscape(r.revision), file)
}

// SnapshotDir is where the files of repo are cached.
func (r *Registry) SnapshotDir(repo string) string {
	return filepath.Join(r.cacheDir, filepath.FromSlash(repo), r.revision)
}

func (r *Registry) visit(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, vals := range r.headers {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileURL)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("bad response status: %s", resp.Status)
	}
	return resp.Body, nil
}

// Download fetches one file into the snapshot dir unless it is already cached.
func (r *Registry) Download(ctx context.Context, repo, file string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(file)) {
		return "", fmt.Errorf("invalid file name %q: must be a relative path inside the repo", file)
	}
	dest := filepath.Join(r.SnapshotDir(repo), filepath.FromSlash(file))
	if exists(dest) {
		return dest, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	body, err := r.visit(ctx, r.fileURL(repo, file))
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download %s: %w", file, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return dest, nil
}

// Snapshot downloads the settings file (if the repo has one) and the
// universe it names, returning a directory FromDir can load.
func (r *Registry) Snapshot(ctx context.Context, repo string) (string, error) {
	if !ValidRepoID(repo) {
		return "", fmt.Errorf("invalid tokenizer reference %q: not a file, directory or owner/name repo id", repo)
	}

	candidates := universeCandidates
	settingsPath, err := r.Download(ctx, repo, SettingsFile)
	switch {
	case err == nil:
		settings, err := LoadSettings(settingsPath)
		if err != nil {
			return "", err
		}
		if settings.Universe != "" {
			candidates = []string{settings.Universe}
		}
	case !errors.Is(err, ErrNotFound):
		return "", err
	}

	for _, name := range candidates {
		_, err := r.Download(ctx, repo, name)
		if err == nil {
			return r.SnapshotDir(repo), nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: no universe file for %s", ErrNotFound, repo)
}

package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/storewise/storewise/internal/observability"
	"github.com/storewise/storewise/internal/storage"
)

// Sync pulls the dataset's parquet objects down into the local directory the
// DuckDB executor reads from. Downloads land in a temp file first so a query
// never sees a half-written table.
type Sync struct {
	Store        storage.ObjectStore
	RemotePrefix string
	LocalDir     string
	Logger       *slog.Logger
	Clock        func() time.Time
}

type SyncResult struct {
	Objects int
	Bytes   int64
}

func (s *Sync) RunOnce(ctx context.Context) (SyncResult, error) {
	s.ensureDefaults()

	result, err := s.pull(ctx)
	if err != nil {
		observability.ObserveDatasetSync("failure", s.Clock())
		return SyncResult{}, err
	}

	observability.ObserveDatasetSync("success", s.Clock())
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "dataset synced",
			slog.Int("objects", result.Objects),
			slog.Int64("bytes", result.Bytes),
			slog.String("dir", s.LocalDir))
	}
	return result, nil
}

func (s *Sync) pull(ctx context.Context) (SyncResult, error) {
	if s.Store == nil {
		return SyncResult{}, fmt.Errorf("object store is required")
	}
	if s.LocalDir == "" {
		return SyncResult{}, fmt.Errorf("local dataset dir is required")
	}

	prefix := strings.Trim(strings.TrimSpace(s.RemotePrefix), "/")
	objects, err := s.Store.List(ctx, prefix)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list dataset objects: %w", err)
	}

	var result SyncResult
	for _, object := range objects {
		if !strings.HasSuffix(object.Key, ".parquet") {
			continue
		}
		n, err := s.download(ctx, object.Key)
		if err != nil {
			return SyncResult{}, err
		}
		result.Objects++
		result.Bytes += n
	}
	if result.Objects == 0 {
		return SyncResult{}, fmt.Errorf("no dataset objects under %q", prefix)
	}
	return result, nil
}

func (s *Sync) download(ctx context.Context, key string) (int64, error) {
	body, err := s.Store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("get dataset object %s: %w", key, err)
	}
	defer func() { _ = body.Close() }()

	if err := os.MkdirAll(s.LocalDir, 0o755); err != nil {
		return 0, fmt.Errorf("create dataset dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.LocalDir, ".sync-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("download dataset object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	target := filepath.Join(s.LocalDir, path.Base(key))
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, fmt.Errorf("replace dataset file %s: %w", target, err)
	}
	return n, nil
}

func (s *Sync) ensureDefaults() {
	if s.Clock == nil {
		s.Clock = time.Now
	}
}

// Refresher re-runs the sync on an interval. The caller is expected to do
// the first sync itself before serving queries; Run only keeps the local
// copy fresh afterwards.
type Refresher struct {
	Sync     *Sync
	Interval time.Duration
	Logger   *slog.Logger
}

func (r *Refresher) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if _, err := r.Sync.RunOnce(ctx); err != nil {
			if r.Logger != nil {
				r.Logger.ErrorContext(ctx, "dataset refresh failed", slog.Any("error", err))
			}
		}
	}
}

// Package offline mirrors the reference guides the assistant leans on, so the
// whole stack stays usable without network connectivity. Fetch failures are
// never fatal: the previous snapshot keeps serving until the next successful
// refresh.
package offline

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/mjessen/formpilot/internal/config"
	"github.com/mjessen/formpilot/internal/errors"
)

// memo key and lifetime for the in-memory layer. SQLite is the source of
// truth; the memo just spares repeated body reads between page loads.
const (
	memoKeyGuides = "guides"
	memoTTL       = 30 * time.Second
)

// snapshotMaxBytes bounds one fetched guide body.
const snapshotMaxBytes = 1 << 20

// Guide is one cached reference document.
type Guide struct {
	Name      string `json:"name"`
	Body      string `json:"body"`
	FetchedAt int64  `json:"fetched_at"`
}

// Coordinator owns the snapshot namespace and its refresh cycle.
type Coordinator struct {
	db       *sql.DB
	client   *http.Client
	sources  []config.GuideSource
	validity time.Duration
	memo     *gocache.Cache
	log      *zap.Logger
}

// New creates a Coordinator from config.
func New(db *sql.DB, cfg *config.Config, log *zap.Logger) *Coordinator {
	return &Coordinator{
		db:       db,
		client:   &http.Client{Timeout: time.Duration(cfg.FetchTimeoutSecs) * time.Second},
		sources:  cfg.GuideSources,
		validity: time.Duration(cfg.CacheValidityHours) * time.Hour,
		memo:     gocache.New(memoTTL, time.Minute),
		log:      log,
	}
}

// CacheOfflineData fetches every guide source and persists the snapshot.
// Idempotent; a refresh at the next natural trigger (startup, page load) is
// always safe. Unreachable network is a logged no-op, not an error — prior
// snapshots stay intact. Only a storage write failure surfaces, and it is
// recoverable.
func (c *Coordinator) CacheOfflineData(ctx context.Context) error {
	fetched := 0
	for _, src := range c.sources {
		body, err := c.fetch(ctx, src.URL)
		if err != nil {
			c.log.Warn("guide fetch failed, keeping previous snapshot",
				zap.String("guide", src.Name), zap.Error(err))
			continue
		}

		_, err = c.db.Exec(`
			INSERT INTO snapshots (name, body, fetched_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				body = excluded.body,
				fetched_at = excluded.fetched_at
		`, src.Name, body, time.Now().Unix())
		if err != nil {
			return errors.NewStorage("write snapshot", err)
		}
		fetched++
	}

	if fetched > 0 {
		c.memo.Flush()
		c.log.Info("offline cache refreshed", zap.Int("guides", fetched), zap.Int("sources", len(c.sources)))
	}
	return nil
}

// IsCacheFresh reports whether a full snapshot exists and the oldest guide is
// still within the validity window. Never memoized: the verdict must flip the
// moment the window elapses, and it costs one aggregate query.
func (c *Coordinator) IsCacheFresh() bool {
	var count int
	var oldest sql.NullInt64
	err := c.db.QueryRow(`SELECT COUNT(*), MIN(fetched_at) FROM snapshots`).Scan(&count, &oldest)
	if err != nil || count < len(c.sources) || !oldest.Valid {
		return false
	}
	return time.Since(time.Unix(oldest.Int64, 0)) <= c.validity
}

// Guides returns the last-known snapshot, fresh or stale. An empty cache
// returns an empty list.
func (c *Coordinator) Guides() ([]Guide, error) {
	if v, ok := c.memo.Get(memoKeyGuides); ok {
		return v.([]Guide), nil
	}

	rows, err := c.db.Query(`SELECT name, body, fetched_at FROM snapshots ORDER BY name ASC`)
	if err != nil {
		return nil, errors.NewStorage("read snapshots", err)
	}
	defer rows.Close()

	guides := []Guide{}
	for rows.Next() {
		var g Guide
		if err := rows.Scan(&g.Name, &g.Body, &g.FetchedAt); err != nil {
			continue
		}
		guides = append(guides, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("read snapshots", err)
	}

	c.memo.SetDefault(memoKeyGuides, guides)
	return guides, nil
}

func (c *Coordinator) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, snapshotMaxBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

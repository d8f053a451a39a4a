// Package localdir serves upstream resources from a directory of CSV files,
// for offline mirrors of the download area.
package localdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/crimson-sun/vitigate/internal/upstream"
)

func init() {
	upstream.Register("dir", func(cfg upstream.Config) (upstream.Fetcher, error) {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("localdir: missing directory")
		}
		return New(cfg.Dir), nil
	})
}

// Fetcher reads {dir}/{resourceID}.csv.
type Fetcher struct {
	dir string
}

// New creates a Fetcher rooted at dir.
func New(dir string) *Fetcher {
	return &Fetcher{dir: dir}
}

// Fetch returns the file contents. A missing file is reported as a 404
// *upstream.APIError so it classifies like an HTTP miss.
func (f *Fetcher) Fetch(ctx context.Context, resourceID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resourceID == "" || strings.ContainsAny(resourceID, `/\`) || resourceID == ".." {
		return nil, &upstream.APIError{StatusCode: 404, Body: "invalid resource " + resourceID}
	}

	data, err := os.ReadFile(filepath.Join(f.dir, resourceID+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &upstream.APIError{StatusCode: 404, Body: resourceID + ".csv not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("localdir: %w", err)
	}
	return data, nil
}

package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/shashiranjanraj/ecomsynth/pkg/logger"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
	"github.com/shashiranjanraj/ecomsynth/pkg/workerpool"
)

// ManifestFile is written last by Save; its absence marks an incomplete
// or foreign directory.
const ManifestFile = "_manifest.json"

// Manifest records how a dataset was generated and what was written.
type Manifest struct {
	Seed      int64                  `json:"seed"`
	Scale     float64                `json:"scale"`
	EndDate   string                 `json:"end_date"`
	Discounts bool                   `json:"discounts"`
	Tables    map[Table]TableSummary `json:"tables"`
}

type TableSummary struct {
	Rows   int    `json:"rows"`
	SHA256 string `json:"sha256"`
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// writers bounds the concurrent table uploads in Save.
const writers = 3

// Save writes the five CSV files and then the manifest. Nothing is written
// when encoding fails. Once a table write fails no further tables are
// written and the directory is left without a manifest, which Read refuses.
func Save(disk storage.Disk, ds *Dataset, m Manifest) (*Manifest, error) {
	files, err := Encode(ds)
	if err != nil {
		return nil, err
	}

	m.Tables = make(map[Table]TableSummary, len(Tables))
	for _, t := range Tables {
		m.Tables[t] = TableSummary{Rows: ds.Rows(t), SHA256: checksum(files[t])}
	}
	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("dataset: encode manifest: %w", err)
	}

	if err := disk.Delete(ManifestFile); err != nil {
		return nil, fmt.Errorf("dataset: clear manifest: %w", err)
	}
	var failed atomic.Bool
	pool := workerpool.New(writers)
	for _, t := range Tables {
		if failed.Load() {
			break
		}
		if err := pool.SubmitWait(func() error {
			if failed.Load() {
				return nil
			}
			if err := disk.Put(t.File(), files[t]); err != nil {
				failed.Store(true)
				return fmt.Errorf("dataset: write %s: %w", t.File(), err)
			}
			return nil
		}); err != nil {
			break
		}
	}
	if err := pool.Shutdown(); err != nil {
		return nil, err
	}
	if err := disk.Put(ManifestFile, append(manifest, '\n')); err != nil {
		return nil, fmt.Errorf("dataset: write manifest: %w", err)
	}
	return &m, nil
}

// ReadOptions tunes Read.
type ReadOptions struct {
	// AllowUnverified accepts a directory without a manifest, such as
	// hand-made CSVs. Checksums are then not verified.
	AllowUnverified bool
}

// Read loads and header-checks every table from disk. A directory without a
// manifest fails with ErrIncomplete unless opts.AllowUnverified is set; the
// returned manifest is then nil.
func Read(ctx context.Context, disk storage.Disk, opts ReadOptions) (*Dataset, *Manifest, error) {
	ds := &Dataset{}
	raw := make(map[Table][]byte, len(Tables))
	for _, t := range Tables {
		b, err := disk.Get(t.File())
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingFile, disk.Location(t.File()))
		}
		if err != nil {
			return nil, nil, err
		}
		if err := Decode(ds, t, b); err != nil {
			return nil, nil, err
		}
		raw[t] = b
	}

	m, err := readManifest(disk)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		if !opts.AllowUnverified {
			return nil, nil, fmt.Errorf("%w: %s has no %s (interrupted or failed generate?)",
				ErrIncomplete, disk.Location(""), ManifestFile)
		}
		logger.WithCtx(ctx).Warn("dataset has no manifest; checksums not verified",
			"dir", disk.Location(""))
		return ds, nil, nil
	}
	for _, t := range Tables {
		want, ok := m.Tables[t]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s not listed", ErrManifestMismatch, t.File())
		}
		if got := ds.Rows(t); got != want.Rows {
			return nil, nil, fmt.Errorf("%w: %s has %d rows, manifest says %d", ErrManifestMismatch, t.File(), got, want.Rows)
		}
		if got := checksum(raw[t]); got != want.SHA256 {
			return nil, nil, fmt.Errorf("%w: %s checksum %s, manifest says %s", ErrManifestMismatch, t.File(), got, want.SHA256)
		}
	}
	return ds, m, nil
}

func readManifest(disk storage.Disk) (*Manifest, error) {
	b, err := disk.Get(ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestMismatch, err)
	}
	return &m, nil
}

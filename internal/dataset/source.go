package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/r2client"
)

// Source produces a dataset. Implementations always return a non-nil
// dataset; err explains an empty one.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Dataset, LoadStats, error)
}

// FileSource loads a local CSV or CSV.zst file.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s FileSource) Name() string { return "file" }

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*Dataset, LoadStats, error) {
	if err := ctx.Err(); err != nil {
		return Empty(s.Path), LoadStats{}, errs.NewDatasetLoadError(s.Path, err)
	}
	return LoadFile(s.Path)
}

// Downloader fetches an object body. *r2client.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// ObjectSource loads a CSV (optionally zstd-compressed) from object storage.
type ObjectSource struct {
	Client Downloader
	Key    string
}

// Name implements Source.
func (s ObjectSource) Name() string { return "r2" }

// Load implements Source.
func (s ObjectSource) Load(ctx context.Context) (*Dataset, LoadStats, error) {
	label := "r2://" + s.Key
	body, _, err := s.Client.Download(ctx, s.Key)
	if err != nil {
		return Empty(label), LoadStats{}, errs.NewDatasetLoadError(label, err)
	}
	defer func() { _ = body.Close() }()

	var r io.Reader = body
	if r2client.IsCompressedKey(s.Key) {
		dec, err := r2client.NewDecompressReader(body)
		if err != nil {
			return Empty(label), LoadStats{}, errs.NewDatasetLoadError(label, err)
		}
		defer func() { _ = dec.Close() }()
		r = dec
	}
	return Parse(label, r)
}

// Chain tries sources in order and returns the first non-empty dataset.
// If every source comes up empty, the errors are joined.
type Chain []Source

// Name implements Source.
func (c Chain) Name() string { return "chain" }

// Load implements Source.
func (c Chain) Load(ctx context.Context) (*Dataset, LoadStats, error) {
	var problems []error
	for _, src := range c {
		ds, stats, err := src.Load(ctx)
		if err == nil && ds.Len() > 0 {
			return ds, stats, nil
		}
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", src.Name(), err))
		}
	}
	if len(problems) == 0 {
		return Empty("chain"), LoadStats{}, nil
	}
	return Empty("chain"), LoadStats{}, errs.NewDatasetLoadError("chain", errors.Join(problems...))
}

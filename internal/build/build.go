// Package build turns accepted editions into files: a PNG per edition, a
// metadata document per edition, the collection summary, and optionally a
// ledger entry per edition.
package build

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/dna"
	"github.com/louisbranch/dnaforge/internal/generator"
	"github.com/louisbranch/dnaforge/internal/ledger"
	"github.com/louisbranch/dnaforge/internal/metadata"
	"github.com/louisbranch/dnaforge/internal/render"
)

// Output directory names below the build directory.
const (
	ImagesDir = "images"
	JSONDir   = "json"
)

// Setup recreates dir with empty images and json subdirectories.
func Setup(dir string) error {
	if dir == "" || filepath.Clean(dir) == "/" {
		return fmt.Errorf("refusing to reset build directory %q", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove build directory: %w", err)
	}
	for _, sub := range []string{ImagesDir, JSONDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("create build directory: %w", err)
		}
	}
	return nil
}

// Options configures a Sink.
type Options struct {
	Dir        string
	Compositor *render.Compositor
	Metadata   metadata.Config
	// Ledger is optional. When set, RunID must name a run created in it.
	Ledger ledger.Store
	RunID  string
}

// Sink writes every accepted edition before the generator samples the next.
// A Sink is not safe for concurrent use.
type Sink struct {
	opts     Options
	writer   *metadata.Writer
	produced []metadata.Metadata
}

// NewSink returns a Sink writing below opts.Dir, which Setup must have
// prepared.
func NewSink(opts Options) (*Sink, error) {
	if opts.Dir == "" {
		return nil, errors.New("build directory is required")
	}
	if opts.Compositor == nil {
		return nil, errors.New("compositor is required")
	}
	if opts.Ledger != nil && opts.RunID == "" {
		return nil, errors.New("run id is required with a ledger")
	}
	return &Sink{
		opts:   opts,
		writer: metadata.NewWriter(filepath.Join(opts.Dir, JSONDir)),
	}, nil
}

// Consume renders and records one edition.
func (s *Sink) Consume(ctx context.Context, record generator.EditionRecord, layers []catalog.Layer) error {
	seq, err := dna.Parse(record.DNA)
	if err != nil {
		return err
	}
	selections, err := dna.Resolve(seq, layers)
	if err != nil {
		return err
	}

	img, err := s.opts.Compositor.Render(ctx, selections)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	imagePath := filepath.Join(s.opts.Dir, ImagesDir, strconv.Itoa(record.Edition)+".png")
	if err := render.WritePNG(imagePath, img); err != nil {
		return err
	}

	doc := s.opts.Metadata.Build(record)
	if err := s.writer.WriteEdition(doc); err != nil {
		return err
	}
	s.produced = append(s.produced, doc)

	hash := dna.Hash(record.DNA)
	if s.opts.Ledger != nil {
		if err := s.opts.Ledger.PutEdition(ctx, ledger.Edition{
			RunID:      s.opts.RunID,
			Edition:    record.Edition,
			DNA:        record.DNA,
			Key:        dna.Key(record.DNA),
			Hash:       hash,
			Attributes: record.Attributes,
			CreatedAt:  record.Timestamp,
		}); err != nil {
			return fmt.Errorf("record edition in ledger: %w", err)
		}
	}

	log.Printf("Created edition: %d, with DNA: %s", record.Edition, hash)
	return nil
}

// Produced returns the metadata documents written so far.
func (s *Sink) Produced() []metadata.Metadata {
	return append([]metadata.Metadata(nil), s.produced...)
}

// Finish closes the run. The collection summary is written only when runErr
// is nil; the ledger run, when configured, is marked with the outcome.
func (s *Sink) Finish(ctx context.Context, runErr error, at time.Time) error {
	if s.opts.Ledger != nil {
		status := ledger.RunStatusCompleted
		var exhausted *generator.ExhaustedError
		switch {
		case errors.As(runErr, &exhausted):
			status = ledger.RunStatusExhausted
		case runErr != nil:
			status = ledger.RunStatusFailed
		}
		if err := s.opts.Ledger.CompleteRun(ctx, s.opts.RunID, status, len(s.produced), at); err != nil {
			return fmt.Errorf("complete ledger run: %w", err)
		}
	}
	if runErr != nil {
		return nil
	}
	return s.writer.WriteAll(s.produced)
}

var _ generator.Sink = (*Sink)(nil)

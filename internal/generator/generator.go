// Package generator runs an edition: it samples DNA sequences layer
// configuration by layer configuration, rejects duplicates within the
// collision tolerance, and hands every accepted edition to a Sink before
// sampling the next one.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"time"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/engine/pairing"
	"github.com/louisbranch/dnaforge/internal/engine/sampler"
	"github.com/louisbranch/dnaforge/internal/engine/uniqueness"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/dnaforge/internal/generator"

// shuffleSalt derives the edition-order source from the run seed so that
// shuffling never consumes values from the sampling source.
const shuffleSalt int64 = 0x5DEECE66D

// LayerConfiguration grows the edition up to GrowEditionSizeTo using one
// layer order.
type LayerConfiguration struct {
	GrowEditionSizeTo int                 `yaml:"growEditionSizeTo"`
	LayersOrder       []catalog.LayerSpec `yaml:"layersOrder"`
}

// Config holds configuration for the generator.
type Config struct {
	Layers                     fs.FS
	LayerConfigurations        []LayerConfiguration
	RarityDelimiter            string
	Seed                       int64
	UniqueDNATolerance         int
	ShuffleLayerConfigurations bool
	StartIndex                 int // First edition index (0 for solana collections)
	Pairing                    []pairing.Rule
	PairingMode                pairing.Mode
	Verbose                    bool
}

// DefaultConfig returns a Config with the engine defaults.
func DefaultConfig() Config {
	return Config{
		RarityDelimiter:    catalog.DefaultRarityDelimiter,
		Seed:               1,
		UniqueDNATolerance: 200,
		StartIndex:         1,
		PairingMode:        pairing.ModeLenient,
	}
}

// EditionRecord is one accepted edition. Records are immutable once built.
type EditionRecord struct {
	DNA        string
	Edition    int
	Attributes []sampler.Attribute
	Timestamp  time.Time
}

// Sink consumes accepted editions. Consume must finish all work for the
// edition before returning; the next sequence is sampled afterwards.
type Sink interface {
	Consume(ctx context.Context, record EditionRecord, layers []catalog.Layer) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, record EditionRecord, layers []catalog.Layer) error

// Consume calls f.
func (f SinkFunc) Consume(ctx context.Context, record EditionRecord, layers []catalog.Layer) error {
	return f(ctx, record, layers)
}

// ExhaustedError reports that the catalog could not reach Target distinct
// editions within the collision tolerance.
type ExhaustedError struct {
	Target   int
	Failures int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("you need more layers or elements to grow your edition to %d artworks", e.Target)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock sets the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator orchestrates one edition run.
type Generator struct {
	config Config
	sink   Sink
	now    func() time.Time
	tracer trace.Tracer
}

// New creates a new Generator with the given configuration.
func New(cfg Config, sink Sink, opts ...Option) (*Generator, error) {
	if cfg.Layers == nil {
		return nil, errors.New("layers file system is required")
	}
	if len(cfg.LayerConfigurations) == 0 {
		return nil, errors.New("at least one layer configuration is required")
	}
	if cfg.RarityDelimiter == "" {
		cfg.RarityDelimiter = catalog.DefaultRarityDelimiter
	}
	if sink == nil {
		sink = SinkFunc(func(context.Context, EditionRecord, []catalog.Layer) error { return nil })
	}
	g := &Generator{
		config: cfg,
		sink:   sink,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Run executes the edition run and returns the accepted records in creation
// order.
//
// # Determinism
//
// All sampling draws from one source seeded with Config.Seed, one value per
// layer per attempted sequence, retries included. For the same seed, catalog
// and pairing rules, Run returns the same records (timestamps aside, which
// come from the clock).
//
// On exhaustion Run returns the records accepted so far together with an
// *ExhaustedError.
func (g *Generator) Run(ctx context.Context) ([]EditionRecord, error) {
	ctx, span := g.tracer.Start(ctx, "generator.Run", trace.WithAttributes(
		attribute.Int64("dnaforge.seed", g.config.Seed),
		attribute.Int("dnaforge.target", g.target()),
	))
	defer span.End()

	records, err := g.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("dnaforge.editions", len(records)))
	return records, err
}

func (g *Generator) run(ctx context.Context) ([]EditionRecord, error) {
	resolver := pairing.NewResolver(g.config.Pairing)
	session := sampler.NewSession(rand.New(rand.NewSource(g.config.Seed)), resolver)
	tracker := uniqueness.NewTracker(g.config.UniqueDNATolerance)
	indexes := g.editionIndexes()

	if g.config.Verbose {
		log.Printf("editions left to create: %v", indexes)
	}

	records := make([]EditionRecord, 0, g.target())
	editionCount := 1
	for configIndex, layerConfig := range g.config.LayerConfigurations {
		layers, err := catalog.LoadLayers(g.config.Layers, layerConfig.LayersOrder, g.config.RarityDelimiter)
		if err != nil {
			return records, fmt.Errorf("load layer configuration %d: %w", configIndex, err)
		}
		if err := resolver.Validate(layers, g.config.PairingMode); err != nil {
			return records, fmt.Errorf("validate layer configuration %d: %w", configIndex, err)
		}

		for editionCount <= layerConfig.GrowEditionSizeTo {
			if err := ctx.Err(); err != nil {
				return records, err
			}
			result, err := session.Sample(layers)
			if err != nil {
				return records, fmt.Errorf("sample edition %d: %w", editionCount, err)
			}

			raw := result.DNA()
			unique, err := tracker.Check(raw)
			if !unique {
				log.Printf("DNA exists!")
			}
			if err != nil {
				return records, &ExhaustedError{
					Target:   layerConfig.GrowEditionSizeTo,
					Failures: tracker.Failures(),
					Err:      err,
				}
			}
			if !unique {
				continue
			}
			if len(indexes) == 0 {
				return records, fmt.Errorf("no edition index left for edition %d", editionCount)
			}

			record := EditionRecord{
				DNA:        raw,
				Edition:    indexes[0],
				Attributes: result.Attributes,
				Timestamp:  g.now().UTC(),
			}
			if err := g.consume(ctx, record, layers); err != nil {
				return records, fmt.Errorf("consume edition %d: %w", record.Edition, err)
			}
			records = append(records, record)
			editionCount++
			indexes = indexes[1:]
		}
	}
	return records, nil
}

func (g *Generator) consume(ctx context.Context, record EditionRecord, layers []catalog.Layer) error {
	ctx, span := g.tracer.Start(ctx, "generator.Edition", trace.WithAttributes(
		attribute.Int("dnaforge.edition", record.Edition),
	))
	defer span.End()

	if err := g.sink.Consume(ctx, record, layers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// target returns the final edition size.
func (g *Generator) target() int {
	configs := g.config.LayerConfigurations
	if len(configs) == 0 {
		return 0
	}
	return configs[len(configs)-1].GrowEditionSizeTo
}

// editionIndexes lists the edition numbers in assignment order.
func (g *Generator) editionIndexes() []int {
	var indexes []int
	for i := g.config.StartIndex; i <= g.target(); i++ {
		indexes = append(indexes, i)
	}
	if g.config.ShuffleLayerConfigurations {
		shuffler := rand.New(rand.NewSource(g.config.Seed ^ shuffleSalt))
		shuffler.Shuffle(len(indexes), func(i, j int) {
			indexes[i], indexes[j] = indexes[j], indexes[i]
		})
	}
	return indexes
}

// Package generate parses generator command flags and runs one edition.
package generate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/louisbranch/dnaforge/internal/build"
	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	"github.com/louisbranch/dnaforge/internal/generator"
	"github.com/louisbranch/dnaforge/internal/ledger"
	ledgersqlite "github.com/louisbranch/dnaforge/internal/ledger/sqlite"
	entrypoint "github.com/louisbranch/dnaforge/internal/platform/cmd"
	"github.com/louisbranch/dnaforge/internal/project"
	"github.com/louisbranch/dnaforge/internal/random"
	"github.com/louisbranch/dnaforge/internal/render"
)

// Config holds generator command configuration. Env tags omit the
// DNAFORGE_ prefix.
type Config struct {
	ProjectPath string `env:"CONFIG" envDefault:"dnaforge.yaml"`
	Seed        int64  `env:"SEED"`
	Tolerance   int    `env:"TOLERANCE"`
	Shuffle     bool   `env:"SHUFFLE"`
	LedgerPath  string `env:"LEDGER_PATH"`
	DryRun      bool   `env:"DRY_RUN"`
	Verbose     bool   `env:"VERBOSE"`
}

func registerFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ProjectPath, "config", cfg.ProjectPath, "project file path")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (0 = random)")
	fs.IntVar(&cfg.Tolerance, "tolerance", cfg.Tolerance, "override the unique dna tolerance (0 = project value)")
	fs.BoolVar(&cfg.Shuffle, "shuffle", cfg.Shuffle, "shuffle edition numbers")
	fs.StringVar(&cfg.LedgerPath, "ledger", cfg.LedgerPath, "sqlite ledger path (empty = no ledger)")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "sample dna without writing any file")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, registerFlags); err != nil {
		return Config{}, err
	}
	if cfg.Tolerance < 0 {
		return Config{}, errors.New("tolerance must not be negative")
	}
	return cfg, nil
}

// Run generates the edition described by the project file.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGenerate, func(ctx context.Context) error {
		return run(ctx, cfg, out, time.Now)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer, now func() time.Time) error {
	if out == nil {
		out = io.Discard
	}
	p, err := project.Load(cfg.ProjectPath)
	if err != nil {
		return err
	}

	seed, generated, err := random.Resolve(cfg.Seed)
	if err != nil {
		return err
	}
	if generated {
		fmt.Fprintf(out, "Using seed %d\n", seed)
	}

	genCfg := p.GeneratorConfig()
	genCfg.Layers = os.DirFS(p.LayersPath())
	genCfg.Seed = seed
	genCfg.Verbose = genCfg.Verbose || cfg.Verbose
	genCfg.ShuffleLayerConfigurations = genCfg.ShuffleLayerConfigurations || cfg.Shuffle
	if cfg.Tolerance > 0 {
		genCfg.UniqueDNATolerance = cfg.Tolerance
	}

	if cfg.DryRun {
		return dryRun(ctx, genCfg, out, now)
	}

	if err := build.Setup(p.BuildPath()); err != nil {
		return err
	}
	compositor, err := render.New(genCfg.Layers, p.RenderOptions(seed))
	if err != nil {
		return err
	}
	opts := build.Options{
		Dir:        p.BuildPath(),
		Compositor: compositor,
		Metadata:   p.MetadataConfig(),
	}

	if cfg.LedgerPath != "" {
		store, err := ledgersqlite.Open(ctx, cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer store.Close()

		runID := ledger.NewRunID()
		if err := store.CreateRun(ctx, ledger.Run{
			ID:        runID,
			Seed:      seed,
			Target:    lastTarget(genCfg.LayerConfigurations),
			CreatedAt: now(),
		}); err != nil {
			return fmt.Errorf("create ledger run: %w", err)
		}
		opts.Ledger = store
		opts.RunID = runID
		fmt.Fprintf(out, "Ledger run %s\n", runID)
	}

	sink, err := build.NewSink(opts)
	if err != nil {
		return err
	}
	gen, err := generator.New(genCfg, sink, generator.WithClock(now))
	if err != nil {
		return err
	}

	records, runErr := gen.Run(ctx)
	// The run context may be canceled already; finishing must still land.
	if err := sink.Finish(context.Background(), runErr, now()); err != nil {
		log.Printf("finish build: %v", err)
	}
	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(out, "Generated %d editions with seed %d\n", len(records), seed)
	return nil
}

func dryRun(ctx context.Context, genCfg generator.Config, out io.Writer, now func() time.Time) error {
	sink := generator.SinkFunc(func(_ context.Context, record generator.EditionRecord, _ []catalog.Layer) error {
		fmt.Fprintf(out, "%d\t%s\n", record.Edition, record.DNA)
		return nil
	})
	gen, err := generator.New(genCfg, sink, generator.WithClock(now))
	if err != nil {
		return err
	}
	records, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sampled %d editions with seed %d\n", len(records), genCfg.Seed)
	return nil
}

func lastTarget(configs []generator.LayerConfiguration) int {
	if len(configs) == 0 {
		return 0
	}
	return configs[len(configs)-1].GrowEditionSizeTo
}

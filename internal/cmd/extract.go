package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/gmad/gma"
	"github.com/nguyengg/gmad/internal"
	"github.com/nguyengg/gmad/internal/config"
	"github.com/nguyengg/gmad/internal/source"
	"github.com/nguyengg/gmad/util"
)

type Extract struct {
	Paths      string `long:"paths" choice:"reject" choice:"sanitize" choice:"allow" description:"how to handle names that would escape the output directory (default: reject, or as set in .gmad)"`
	Fsync      bool   `long:"fsync" description:"flush every extracted file to stable storage before moving it into place"`
	FailFast   bool   `long:"fail-fast" description:"stop at the first addon that fails instead of continuing with the rest"`
	NoProgress bool   `long:"no-progress" description:"do not display progress bars"`
	Args       struct {
		Input  string         `positional-arg-name:"input" description:"an addon, a directory, a bundle, or an S3 URI (s3://bucket/key or s3://bucket/prefix/)" required:"yes"`
		Output flags.Filename `positional-arg-name:"output" description:"the directory to extract addons to; will be created if absent" required:"yes"`
	} `positional-args:"yes"`

	sourceOptFns []func(*source.Options)
	logOutput    io.Writer
}

func (c *Extract) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	return c.extract(ctx)
}

// settings merges .gmad settings with command-line flags; flags take precedence.
func (c *Extract) settings() (cfg config.ExtractConfig, err error) {
	if cfg, err = config.ForExtract(); err != nil {
		return
	}

	if c.Paths != "" {
		if cfg.PathPolicy, err = gma.ParsePathPolicy(c.Paths); err != nil {
			return
		}
	}

	cfg.Fsync = cfg.Fsync || c.Fsync
	cfg.FailFast = cfg.FailFast || c.FailFast
	return
}

func (c *Extract) extract(ctx context.Context) error {
	cfg, err := c.settings()
	if err != nil {
		return err
	}

	output := string(c.Args.Output)
	if err = ensureDir(output); err != nil {
		return err
	}

	src, err := source.Open(ctx, c.Args.Input, c.sourceOptFns...)
	if err != nil {
		return err
	}

	var (
		merr             *multierror.Error
		i, success, skip int
	)

	fail := func(logger *log.Logger, name string, err error) bool {
		logger.Printf("extract error: %v", err)
		merr = multierror.Append(merr, fmt.Errorf(`extract "%s" error: %w`, name, err))
		return !cfg.FailFast
	}

inputs:
	for in, err := range src.Inputs() {
		if err != nil {
			merr = multierror.Append(merr, err)
			break
		}

		for a, err := range in.Addons(ctx) {
			i++
			name := in.Name
			if a != nil {
				name = a.Name
			}
			actx := internal.WithPrefixLogger(ctx, c.logOutput, internal.Prefix(i, 0, name))
			logger := internal.MustLogger(actx)

			if err == nil {
				var dir string
				if dir, err = c.extractAddon(actx, a, output, cfg); err == nil {
					success++
					if dir != "" {
						logger.Printf(`extracted to "%s"`, util.DirBase(dir))
					}
					continue
				}
			}

			switch {
			case errors.Is(err, context.Canceled):
				merr = multierror.Append(merr, err)
				break inputs
			case src.Multi && notAddon(err):
				logger.Printf("skipped: not an addon")
				skip++
			default:
				if !fail(logger, name, err) {
					break inputs
				}
			}
		}
	}

	log.Printf("successfully extracted %d/%d addons (%d skipped)", success, i-skip, skip)
	return merr.ErrorOrNil()
}

func (c *Extract) extractAddon(ctx context.Context, a *source.Addon, output string, cfg config.ExtractConfig) (string, error) {
	r, err := gma.NewReader(a)
	if err != nil {
		return "", err
	}

	logger := internal.MustLogger(ctx)

	// per-file lines are throttled while the bar is shown.
	reporter := gma.LogProgressReporter(logger)
	if !c.NoProgress && len(r.Records) != 0 {
		bar := internal.DefaultBytes(r.TotalSize(), "extracting")
		defer bar.Close()
		reporter = internal.ProgressReporter(bar, logger)
	}

	return r.Extract(ctx, output, func(opts *gma.ExtractOptions) {
		opts.ProgressReporter = reporter
		opts.Logger = logger
		opts.PathPolicy = cfg.PathPolicy
		opts.FallbackName = a.Stem
		opts.Sync = cfg.Fsync
	})
}

// notAddon returns true if err shows the input was never an addon to begin with.
//
// Directories and S3 prefixes may hold other files, including ".bin" files that are not LZMA-compressed addons.
func notAddon(err error) bool {
	if errors.Is(err, gma.ErrInvalidFormat) || errors.Is(err, source.ErrUndecodable) {
		return true
	}

	var ge *gma.Error
	return errors.As(err, &ge) && ge.Stage == gma.StageFormat
}

// ensureDir creates the output directory if absent and fails if it is not a directory.
func ensureDir(name string) error {
	fi, err := os.Stat(name)
	switch {
	case err == nil && fi.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf(`output "%s" is not a directory`, name)
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(name, 0755); err != nil {
			return fmt.Errorf(`create output directory "%s" error: %w`, name, err)
		}
		return nil
	default:
		return fmt.Errorf(`stat output "%s" error: %w`, name, err)
	}
}

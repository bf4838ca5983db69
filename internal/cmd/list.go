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

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/nguyengg/gmad/gma"
	"github.com/nguyengg/gmad/internal"
	"github.com/nguyengg/gmad/internal/source"
)

type List struct {
	Args struct {
		Inputs []string `positional-arg-name:"input" description:"addons, directories, bundles, or S3 URIs to list" required:"yes"`
	} `positional-args:"yes"`

	out          io.Writer
	sourceOptFns []func(*source.Options)
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	return c.list(ctx)
}

func (c *List) list(ctx context.Context) error {
	if c.out == nil {
		c.out = os.Stdout
	}

	var merr *multierror.Error

	n := len(c.Args.Inputs)
	for i, arg := range c.Args.Inputs {
		logger := log.New(os.Stderr, internal.Prefix(i+1, n, arg), 0)

		if err := c.listSource(ctx, logger, arg); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}

			logger.Printf("list error: %v", err)
			merr = multierror.Append(merr, fmt.Errorf(`list "%s" error: %w`, arg, err))
		}
	}

	return merr.ErrorOrNil()
}

func (c *List) listSource(ctx context.Context, logger *log.Logger, arg string) error {
	src, err := source.Open(ctx, arg, c.sourceOptFns...)
	if err != nil {
		return err
	}

	var merr *multierror.Error
	for in, err := range src.Inputs() {
		if err != nil {
			return multierror.Append(merr, err)
		}

		for a, err := range in.Addons(ctx) {
			if err == nil {
				err = c.listAddon(a)
			}

			switch {
			case err == nil:
			case errors.Is(err, context.Canceled):
				return err
			case src.Multi && notAddon(err):
				logger.Printf(`skipped "%s": not an addon`, in.Name)
			default:
				merr = multierror.Append(merr, err)
			}
		}
	}

	return merr.ErrorOrNil()
}

// listAddon prints the header and record table.
//
// Only the header and record table are decoded; payloads are never read.
func (c *List) listAddon(a *source.Addon) error {
	r, err := gma.NewReader(a)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.out, "%s\n", a.Name)
	_, _ = fmt.Fprintf(c.out, "  name:        %s\n", r.Header.Name)
	_, _ = fmt.Fprintf(c.out, "  author:      %s\n", r.Header.Author)
	_, _ = fmt.Fprintf(c.out, "  description: %s\n", firstLine(r.Header.Description))
	_, _ = fmt.Fprintf(c.out, "  files:       %d (%s)\n", len(r.Records), humanize.Bytes(uint64(r.TotalSize())))

	for _, rec := range r.Records {
		_, _ = fmt.Fprintf(c.out, "  %5d %10d %10s  %s\n", rec.Index, rec.Offset, humanize.Bytes(uint64(rec.Size)), rec.Name)
	}

	return nil
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i != -1 {
		return s[:i] + " ..."
	}

	return s
}

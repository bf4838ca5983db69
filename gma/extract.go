package gma

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/gmad/util"
)

// ExtractOptions customises Extract.
type ExtractOptions struct {
	// ProgressReporter controls how progress is reported.
	//
	// By default, LogProgressReporter is used with Logger. Set to nil to disable reporting.
	ProgressReporter ProgressReporter

	// Logger receives one line when extraction starts and one when it finishes, or "addon is empty".
	//
	// By default, log.Default is used.
	Logger *log.Logger

	// BufferSize is the length of the buffer being used for copying payloads.
	//
	// BufferSize indirectly controls how frequently ProgressReporter is called. Default to DefaultBufferSize.
	BufferSize int

	// PathPolicy controls how the addon name and the file names are turned into output paths.
	//
	// The zero value is RejectUnsafePaths.
	PathPolicy PathPolicy

	// FallbackName is used as the output directory name if the addon's declared name is blank.
	//
	// ExtractFile sets this to the stem of the archive's file name.
	FallbackName string

	// Sync will call [os.File.Sync] on every file before it is moved into place.
	Sync bool
}

// ExtractFile opens the named archive and extracts its files under dir.
//
// The archive is closed when ExtractFile returns. See Reader.Extract for the layout of the output.
func ExtractFile(ctx context.Context, name, dir string, optFns ...func(*ExtractOptions)) (string, error) {
	src, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf(`open file "%s" error: %w`, name, err)
	}
	defer src.Close()

	stem, _ := util.StemAndExt(name)
	return Extract(ctx, src, dir, append([]func(*ExtractOptions){func(opts *ExtractOptions) {
		opts.FallbackName = stem
	}}, optFns...)...)
}

// Extract decodes the archive from src and extracts its files under dir.
//
// See Reader.Extract for the layout of the output.
func Extract(ctx context.Context, src io.Reader, dir string, optFns ...func(*ExtractOptions)) (string, error) {
	opts := newExtractOptions(optFns)

	r, err := NewReader(src, func(o *Options) {
		o.BufferSize = opts.BufferSize
	})
	if err != nil {
		return "", err
	}

	return r.extract(ctx, dir, opts)
}

// Extract writes every file in the archive to `dir/{addon name}/{file name}`, in record order.
//
// Returns the output directory `dir/{addon name}`. If the archive contains no files, nothing is created and the
// returned output directory is the empty string with a nil error.
//
// Every output path is resolved with [ExtractOptions.PathPolicy] before anything is written, so an archive with an
// unsafe name fails without touching the filesystem. Intermediate directories are created as needed. Each file is
// written to a temporary file in its destination directory and renamed into place once its payload has been read in
// full, replacing any file that already exists at that path. Files written before a failure remain on disk.
//
// Extract consumes the payloads so it can only be called once. If Files has already been partially iterated, only the
// remaining files are written.
func (r *Reader) Extract(ctx context.Context, dir string, optFns ...func(*ExtractOptions)) (string, error) {
	return r.extract(ctx, dir, newExtractOptions(optFns))
}

func newExtractOptions(optFns []func(*ExtractOptions)) *ExtractOptions {
	opts := &ExtractOptions{
		Logger:     log.Default(),
		BufferSize: DefaultBufferSize,
	}
	// resolved lazily so that a Logger set by optFns is honoured.
	opts.ProgressReporter = func(rec FileRecord, path string, written int64, done bool) {
		LogProgressReporter(opts.Logger)(rec, path, written, done)
	}
	for _, fn := range optFns {
		fn(opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	return opts
}

func (r *Reader) extract(ctx context.Context, dir string, opts *ExtractOptions) (string, error) {
	if len(r.Records) == 0 {
		opts.Logger.Printf(`addon "%s" is empty`, r.Header.Name)
		return "", nil
	}

	addonName := r.Header.Name
	if strings.TrimSpace(addonName) == "" {
		addonName = opts.FallbackName
	}

	output, err := opts.PathPolicy.Join(dir, addonName)
	if err != nil {
		return "", &Error{Stage: StagePath, Offset: r.c.off, Err: err}
	}

	paths := make([]string, len(r.Records))
	for i, rec := range r.Records {
		if paths[i], err = opts.PathPolicy.Join(output, rec.Name); err != nil {
			return "", &Error{Stage: StagePath, Name: rec.Name, Offset: r.c.off, Err: err}
		}
	}

	if err = os.MkdirAll(output, 0755); err != nil {
		return "", &Error{Stage: StageWrite, Offset: r.c.off, Err: err}
	}

	opts.Logger.Printf(`extracting %d files (%s) to "%s"`, len(r.Records), humanize.Bytes(uint64(r.TotalSize())), output)

	buf := make([]byte, opts.BufferSize)
	for f, err := range r.Files() {
		if err != nil {
			return output, err
		}

		// r.next has already advanced past f.
		if err = r.writeFile(ctx, paths[r.next-1], f, buf, opts); err != nil {
			return output, err
		}
	}

	opts.Logger.Printf(`finished extracting addon "%s"`, r.Header.Name)
	return output, nil
}

// writeFile copies the payload of f to a temporary file next to path, then renames it to path.
func (r *Reader) writeFile(ctx context.Context, path string, f *File, buf []byte, opts *ExtractOptions) (err error) {
	fail := func(err error) error {
		var ge *Error
		if errors.As(err, &ge) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return &Error{Stage: StageWrite, Name: f.Name, Offset: r.c.off, Err: err}
	}

	parent := filepath.Dir(path)
	if err = os.MkdirAll(parent, 0755); err != nil {
		return fail(err)
	}

	w, err := os.CreateTemp(parent, "."+filepath.Base(path)+".*")
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(w.Name())
		}
	}()

	var rw *reportWriter
	if opts.ProgressReporter != nil {
		rw = &reportWriter{rec: f.FileRecord, path: path, fn: opts.ProgressReporter}
		_, err = util.CopyBufferWithContext(ctx, io.MultiWriter(w, rw), f, buf)
	} else {
		_, err = util.CopyBufferWithContext(ctx, w, f, buf)
	}

	if err == nil {
		err = w.Chmod(0644)
	}
	if err == nil && opts.Sync {
		err = w.Sync()
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(w.Name(), path)
	}
	if err != nil {
		return fail(err)
	}

	if rw != nil {
		rw.done()
	}

	return nil
}

package gma

import (
	"log"

	"github.com/dustin/go-humanize"
)

// ProgressReporter is called to provide update on extracting individual files.
//
//   - rec: the file record being extracted
//   - path: the output path of the file
//   - written: number of bytes of the file that has been written so far
//   - done: is true only when the file has been written in its entirety and moved into place
//
// The method will be called at least once for every file being extracted. Empty files only produce the call with
// `done` being true.
type ProgressReporter func(rec FileRecord, path string, written int64, done bool)

// LogProgressReporter returns a reporter that only reports upon a file being successfully extracted.
//
// Specifically, after file `path/to/a` is written, logger will print `extracted "path/to/a" (5 B)`. This is the default
// reporter of Extract, using [ExtractOptions.Logger].
func LogProgressReporter(logger *log.Logger) ProgressReporter {
	return func(rec FileRecord, _ string, _ int64, done bool) {
		if done {
			logger.Printf(`extracted "%s" (%s)`, rec.Name, humanize.Bytes(uint64(rec.Size)))
		}
	}
}

// reportWriter is an io.Writer that calls the ProgressReporter after every write.
type reportWriter struct {
	rec     FileRecord
	path    string
	written int64
	fn      ProgressReporter
}

func (w *reportWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	w.fn(w.rec, w.path, w.written, false)
	return len(p), nil
}

func (w *reportWriter) done() {
	w.fn(w.rec, w.path, w.written, true)
}

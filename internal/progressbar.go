package internal

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/gmad/gma"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}

// Adder is implemented by *progressbar.ProgressBar.
type Adder interface {
	Add64(n int64) error
}

// ProgressReporter returns a gma.ProgressReporter that advances the given bar by the number of payload bytes written.
//
// If logger is non-nil, completed files are also logged, at most once every 5 seconds.
func ProgressReporter(bar Adder, logger *log.Logger) gma.ProgressReporter {
	var (
		sometimes = rate.Sometimes{Interval: 5 * time.Second}
		last      int64
		n         int
	)

	return func(rec gma.FileRecord, _ string, written int64, done bool) {
		if done {
			n++
			last = 0
			if logger != nil {
				sometimes.Do(func() {
					logger.Printf(`[%d] extracted "%s" (%s)`, n, rec.Name, humanize.Bytes(uint64(rec.Size)))
				})
			}
			return
		}

		if delta := written - last; delta > 0 {
			_ = bar.Add64(delta)
		}
		last = written
	}
}

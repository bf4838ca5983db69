package bundle

import (
	"context"
	"errors"
	"io"

	"github.com/mholt/archives"
)

// Identify inspects the leading bytes of src to determine its container or compression format.
//
// The returned extension is compound for compressed archives (".tar.gz") and can be passed to ForExt or
// codec.ForExt. An empty extension with nil error means the format is not recognised, which is the case for plain
// addons. The returned io.Reader must be used in place of src since the inspected bytes have been consumed from it.
func Identify(ctx context.Context, name string, src io.Reader) (string, io.Reader, error) {
	format, r, err := archives.Identify(ctx, name, src)
	switch {
	case errors.Is(err, archives.NoMatch):
		return "", r, nil
	case err != nil:
		return "", r, err
	default:
		return format.Extension(), r, nil
	}
}

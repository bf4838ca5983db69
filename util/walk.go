package util

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
)

// RegularFiles returns an iterator over the paths of all regular files under root, depth-first in lexical order.
//
// If root is itself a regular file, it is the only path produced. Directories, symlinks, and other irregular files are
// skipped. The walk is lazy: a directory is only read when the iterator reaches it, and breaking out of the loop stops
// the walk. An error from the walk or from the context is yielded once, after which the iterator stops.
func RegularFiles(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			switch {
			case err != nil:
				return err
			case d.IsDir(), !d.Type().IsRegular():
				return nil
			case !yield(path, nil):
				stopped = true
				return filepath.SkipAll
			default:
				return nil
			}
		})

		if err != nil && !stopped {
			yield("", err)
		}
	}
}

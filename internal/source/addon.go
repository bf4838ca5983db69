package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/nguyengg/gmad/bundle"
	"github.com/nguyengg/gmad/codec"
	"github.com/nguyengg/gmad/util"
)

// Ext is the extension of addon files.
const Ext = ".gma"

// ErrUndecodable is returned if an input cannot be opened with the decompressor its extension calls for.
var ErrUndecodable = errors.New("not in the compression format of its extension")

// Addon is a decoded stream of a single addon.
type Addon struct {
	// Name identifies the addon in logs.
	//
	// Addons from bundles are named "{bundle}!{entry}".
	Name string

	// Stem is the file name without extensions, used as the output directory if the addon's declared name is blank.
	Stem string

	io.Reader
}

// IsAddonName returns true if the given name has the addon extension, optionally followed by a compression extension
// such as ".gma.xz".
func IsAddonName(name string) bool {
	_, ext := util.StemAndExt(name)
	if ext = strings.ToLower(ext); ext == Ext {
		return true
	}

	if inner, outer, ok := strings.Cut(ext, Ext+"."); ok && inner == "" {
		_, ok = codec.ForExt("." + outer)
		return ok
	}

	return false
}

// Addons returns an iterator over the addon streams of this Input.
//
// The format of the Input is determined by its extension first. If the extension is not recognised, the leading bytes
// are inspected instead, and inputs that are neither bundles nor compressed are assumed to be plain addons. Entries of
// a bundle that are not named like addons are ignored.
//
// Each Addon is only valid until the iterator advances. An error is yielded if the Input or a bundle entry cannot be
// opened or decompressed; errors from a single bundle entry do not stop the iteration.
func (in *Input) Addons(ctx context.Context) iter.Seq2[*Addon, error] {
	return func(yield func(*Addon, error) bool) {
		stem, ext := util.StemAndExt(in.Name)

		b, ok := bundle.ForExt(ext)
		if !ok {
			// the stream is closed by now so a sniffed bundle can be reopened for random access.
			if b = in.fromStream(ctx, stem, ext, yield); b == nil {
				return
			}
		}

		in.fromBundle(ctx, b, yield)
	}
}

// fromStream yields the addon read sequentially from the Input.
//
// If the leading bytes reveal a bundle instead, nothing is yielded and the Bundle is returned.
func (in *Input) fromStream(ctx context.Context, stem, ext string, yield func(*Addon, error) bool) bundle.Bundle {
	src, err := in.Open(ctx)
	if err != nil {
		yield(nil, err)
		return nil
	}
	defer src.Close()

	var r io.Reader = src

	_, known := codec.ForExt(ext)
	if !known && !strings.EqualFold(ext, Ext) {
		if ext, r, err = bundle.Identify(ctx, in.Name, src); err != nil {
			yield(nil, fmt.Errorf("identify format error: %w", err))
			return nil
		}

		if b, ok := bundle.ForExt(ext); ok {
			return b
		}
	}

	dec, err := decode(ext, r)
	if err != nil {
		yield(nil, err)
		return nil
	}
	defer dec.Close()

	yield(&Addon{Name: in.Name, Stem: stem, Reader: dec}, nil)
	return nil
}

func (in *Input) fromBundle(ctx context.Context, b bundle.Bundle, yield func(*Addon, error) bool) {
	src, size, err := in.OpenReaderAt(ctx)
	if err != nil {
		yield(nil, err)
		return
	}
	defer src.Close()

	for e, err := range b.Entries(src, size) {
		if err != nil {
			yield(nil, fmt.Errorf("read %s entries error: %w", b.Ext(), err))
			return
		}

		if !IsAddonName(e.Name()) {
			continue
		}

		if !in.fromEntry(e, yield) {
			return
		}
	}
}

// fromEntry returns false if the iteration should stop.
func (in *Input) fromEntry(e bundle.Entry, yield func(*Addon, error) bool) bool {
	name := in.Name + "!" + e.Name()

	rc, err := e.Open()
	if err != nil {
		return yield(nil, fmt.Errorf(`open entry "%s" error: %w`, name, err))
	}
	defer rc.Close()

	stem, ext := util.StemAndExt(e.Name())
	dec, err := decode(ext, rc)
	if err != nil {
		return yield(nil, fmt.Errorf(`decode entry "%s" error: %w`, name, err))
	}
	defer dec.Close()

	return yield(&Addon{Name: name, Stem: stem, Reader: dec}, nil)
}

// decode wraps r with the decompressor for the given extension, if any.
//
// Closing the returned decoder does not close r.
func decode(ext string, r io.Reader) (io.ReadCloser, error) {
	c, ok := codec.ForExt(ext)
	if !ok {
		return io.NopCloser(r), nil
	}

	dec, err := c.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("open %s decoder error: %w: %w", c.Ext(), ErrUndecodable, err)
	}

	return dec, nil
}

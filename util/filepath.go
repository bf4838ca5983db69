package util

import (
	"path/filepath"
	"strings"
)

// compressionExts are the extensions that may follow another extension, such as ".gz" in ".tar.gz".
var compressionExts = map[string]bool{
	".gz":   true,
	".gzip": true,
	".xz":   true,
	".zst":  true,
	".zstd": true,
	".lz4":  true,
	".lzma": true,
}

// StemAndExt is a variant of filepath.Ext that allows compound extensions to be detected while also returning the stem.
//
// For example, `filepath.Ext("addon.gma.xz")` would return ".xz", but `StemAndExt("addon.gma.xz")` would return
// ".gma.xz" for the extension, "addon" for the stem. Only compression extensions (.gz, .xz, .zst, .lz4, .lzma)
// extend the extension to the left, so "my.cool.addon.gma" has stem "my.cool.addon" and extension ".gma".
//
// Both `/` and `\` are treated as path separators regardless of the platform.
func StemAndExt(path string) (stem, ext string) {
	if i := strings.LastIndexAny(path, `/\`); i != -1 {
		path = path[i+1:]
	}

	ext = filepath.Ext(path)
	stem = strings.TrimSuffix(path, ext)

	if compressionExts[strings.ToLower(ext)] {
		if inner := filepath.Ext(stem); inner != "" && inner != stem {
			ext = inner + ext
			stem = strings.TrimSuffix(stem, inner)
		}
	}

	if stem == "" {
		// dotfiles such as ".gma" are all stem.
		stem, ext = path, ""
	}

	return
}

// DirBase joins both filepath.Dir and filepath.Base for the given file name.
//
// The idea is that sometimes the working directory is not clear so by printing both the directory and the basename of
// a file, it is clearer where the file is.
func DirBase(name string) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)
	if dir != "" && dir != "." {
		return filepath.Join(filepath.Base(dir), base)
	}

	abs, err := filepath.Abs(name)
	if err == nil {
		return filepath.Join(filepath.Base(filepath.Dir(abs)), base)
	}

	return base
}

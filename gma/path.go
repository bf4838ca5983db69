package gma

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathPolicy controls how names from the archive are turned into paths under the output directory.
//
// Names in the archive are relative paths using `/` as separator, but nothing in the format prevents a name such as
// "../../.bashrc" or "/etc/passwd". The zero value is RejectUnsafePaths.
type PathPolicy int

const (
	// RejectUnsafePaths fails extraction with ErrUnsafePath if a name is empty, absolute, contains a `..` segment, or
	// is otherwise not local per filepath.IsLocal. Empty and `.` segments are dropped.
	RejectUnsafePaths PathPolicy = iota

	// SanitizeUnsafePaths rewrites unsafe names so that they stay under the output directory.
	//
	// Backslashes are treated as separators, `..` segments become `_`, `:` becomes `_`, and empty or `.` segments
	// are dropped. So "../evil.txt" is written to "_/evil.txt" and "C:\absolute.txt" to "C_/absolute.txt". Names that
	// sanitise to nothing still fail with ErrUnsafePath.
	SanitizeUnsafePaths

	// AllowUnsafePaths joins names as-is with filepath.Join, which may produce paths outside the output directory.
	AllowUnsafePaths
)

// ParsePathPolicy returns the PathPolicy whose String value is s.
func ParsePathPolicy(s string) (PathPolicy, error) {
	switch strings.ToLower(s) {
	case "", "reject":
		return RejectUnsafePaths, nil
	case "sanitize", "sanitise":
		return SanitizeUnsafePaths, nil
	case "allow":
		return AllowUnsafePaths, nil
	default:
		return 0, fmt.Errorf("unknown path policy %q", s)
	}
}

func (p PathPolicy) String() string {
	switch p {
	case RejectUnsafePaths:
		return "reject"
	case SanitizeUnsafePaths:
		return "sanitize"
	case AllowUnsafePaths:
		return "allow"
	default:
		return fmt.Sprintf("PathPolicy(%d)", int(p))
	}
}

// Join returns the path of the given archive name under dir.
//
// The returned error wraps ErrUnsafePath if the name cannot be used with this policy.
func (p PathPolicy) Join(dir, name string) (string, error) {
	var (
		rel string
		err error
	)

	switch p {
	case RejectUnsafePaths:
		rel, err = rejectUnsafe(name)
	case SanitizeUnsafePaths:
		rel, err = sanitize(name)
	case AllowUnsafePaths:
		if name == "" {
			return "", fmt.Errorf("%w: empty name", ErrUnsafePath)
		}
		return filepath.Join(dir, filepath.FromSlash(name)), nil
	default:
		return "", fmt.Errorf("unknown path policy %d", int(p))
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(dir, rel), nil
}

func rejectUnsafe(name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf(`%w: "%s" is absolute`, ErrUnsafePath, name)
	}

	segments := make([]string, 0, strings.Count(name, "/")+1)
	for _, s := range strings.Split(name, "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf(`%w: "%s" refers to a parent directory`, ErrUnsafePath, name)
		}

		segments = append(segments, s)
	}

	rel := filepath.Join(segments...)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf(`%w: "%s" is not a local path`, ErrUnsafePath, name)
	}

	return rel, nil
}

func sanitize(name string) (string, error) {
	segments := make([]string, 0)
	for _, s := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		switch s {
		case ".":
			continue
		case "..":
			s = "_"
		default:
			s = strings.ReplaceAll(s, ":", "_")
		}

		segments = append(segments, s)
	}

	rel := filepath.Join(segments...)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf(`%w: "%s" cannot be sanitised`, ErrUnsafePath, name)
	}

	return rel, nil
}

package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/nguyengg/gmad/util"
)

// Prefix creates a consistent prefix for all archive-based commands to use.
//
// i and n are the one-based ordinal and expected count. If n is not known in advance (directory and S3 prefix
// inputs are discovered lazily), pass 0 and only the ordinal is printed.
func Prefix(i, n int, name string) string {
	base := util.TruncateRightWithSuffix(baseName(name), 30, "...")
	if n <= 0 {
		return fmt.Sprintf(`[%d] "%s" - `, i, base)
	}

	return fmt.Sprintf(`[%d/%d] "%s" - `, i, n, base)
}

// baseName works on both local paths and S3 URIs.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i != -1 {
		return name[i+1:]
	}

	return name
}

type loggerKey struct{}

// WithPrefixLogger creates a new logger writing to w using the given prefix, then attaches the logger to context.
//
// If w is nil, os.Stderr is used.
func WithPrefixLogger(ctx context.Context, w io.Writer, prefix string) context.Context {
	if w == nil {
		w = os.Stderr
	}

	return context.WithValue(ctx, loggerKey{}, log.New(w, prefix, 0))
}

// MustLogger returns the logger attached to the given context.
func MustLogger(ctx context.Context) *log.Logger {
	return ctx.Value(loggerKey{}).(*log.Logger)
}

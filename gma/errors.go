package gma

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned if the input does not start with the archive signature.
	ErrInvalidFormat = errors.New("not a recognized archive")

	// ErrTruncated is returned if the input ends before a field or payload has been read in its entirety.
	ErrTruncated = errors.New("archive is truncated")

	// ErrUnsafePath is returned if a name from the archive cannot be turned into a path under the output directory
	// with the chosen PathPolicy.
	ErrUnsafePath = errors.New("unsafe path")
)

// Stage identifies the part of the decode or extract pipeline that failed.
type Stage int

const (
	// StageFormat is the signature check.
	StageFormat Stage = iota
	// StageHeader is decoding the addon name, description, and author.
	StageHeader
	// StageRecords is decoding the file record table.
	StageRecords
	// StagePath is deriving output paths from names in the archive.
	StagePath
	// StagePayload is reading a file's payload.
	StagePayload
	// StageWrite is creating directories and writing files.
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageFormat:
		return "check signature"
	case StageHeader:
		return "read header"
	case StageRecords:
		return "read record table"
	case StagePath:
		return "resolve output path"
	case StagePayload:
		return "read payload"
	case StageWrite:
		return "write file"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Error is the error type returned by NewReader and Extract.
//
// Use errors.Is with ErrInvalidFormat, ErrTruncated, or ErrUnsafePath to classify the cause. Filesystem errors are
// reported with StageWrite and wrap the original *fs.PathError.
type Error struct {
	// Stage is where the failure happened.
	Stage Stage
	// Name is the name of the file record involved, empty if the failure is not specific to one record.
	Name string
	// Offset is the number of bytes consumed from the input when the failure happened.
	Offset int64
	// Err is the cause.
	Err error
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s error at offset %d: %v", e.Stage, e.Offset, e.Err)
	}

	return fmt.Sprintf(`%s "%s" error at offset %d: %v`, e.Stage, e.Name, e.Offset, e.Err)
}

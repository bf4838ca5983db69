// Package gmatest builds synthetic archives for tests.
package gmatest

import (
	"bytes"
	"encoding/binary"
)

// File is one embedded file of an Archive.
type File struct {
	Name string
	Data []byte
}

// Archive describes the synthetic archive to build.
type Archive struct {
	Name        string
	Description string
	Author      string
	Files       []File
}

// Bytes encodes the archive with the record table followed by the payloads in the same order.
func (a Archive) Bytes() []byte {
	var b bytes.Buffer

	b.WriteString("GMAD")
	b.Write(make([]byte, 18))
	b.WriteString(a.Name + "\x00")
	b.WriteString(a.Description + "\x00")
	b.WriteString(a.Author + "\x00")
	b.Write(make([]byte, 4))

	for i, f := range a.Files {
		_ = binary.Write(&b, binary.LittleEndian, uint32(i+1))
		b.WriteString(f.Name + "\x00")
		_ = binary.Write(&b, binary.LittleEndian, uint32(len(f.Data)))
		b.Write(make([]byte, 8))
	}
	_ = binary.Write(&b, binary.LittleEndian, uint32(0))

	for _, f := range a.Files {
		b.Write(f.Data)
	}

	return b.Bytes()
}

// New is a shorthand for an Archive with the given name and files.
func New(name string, files ...File) Archive {
	return Archive{Name: name, Description: "description", Author: "author", Files: files}
}

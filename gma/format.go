package gma

const (
	// Magic is the little-endian value of the "GMAD" signature that starts every archive.
	Magic uint32 = 0x44414d47

	// headerReservedSize is the number of bytes between the signature and the addon name.
	headerReservedSize = 18
	// headerTrailerSize is the number of bytes between the addon author and the first file record.
	headerTrailerSize = 4
	// recordReservedSize is the number of bytes following each file record's size.
	recordReservedSize = 8
)

// Header contains the addon's metadata decoded from the start of the archive.
type Header struct {
	// Name is the addon's declared name, which is also the name of the directory it is extracted to.
	Name string
	// Description is decoded but not otherwise used by extraction.
	Description string
	// Author is decoded but not otherwise used by extraction.
	Author string
}

// FileRecord describes one embedded file as declared in the archive's record table.
type FileRecord struct {
	// Index is the non-zero value preceding the record in the table.
	Index uint32

	// Name is the relative path of the file using `/` as separator.
	Name string

	// Size is the number of bytes of the file's payload.
	Size uint32

	// Offset is the position of the file's payload relative to the start of the payload region.
	//
	// Payloads are stored back-to-back in record order so Offset is the sum of the sizes of all preceding records.
	Offset int64
}

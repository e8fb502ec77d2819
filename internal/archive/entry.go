package archive

import (
	"strings"
	"time"
)

// FlagRegular is the attribute bit that marks a regular file. Entries whose
// flags lack it are directories.
const FlagRegular = 0x8000

// Entry is one archive record prior to tree reconstruction.
type Entry struct {
	path    string
	isDir   bool
	modTime time.Time
	size    uint64
}

// NewEntry returns an entry for the given archive path. Backslashes are
// treated as separators and a single trailing separator is dropped.
func NewEntry(path string) (Entry, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{path: normalized}, nil
}

// Path returns the forward-slash path of the entry.
func (e Entry) Path() string {
	return e.path
}

// IsDirectory reports whether the entry describes a directory.
func (e Entry) IsDirectory() bool {
	return e.isDir
}

// ModifiedTime returns the decoded modification time.
func (e Entry) ModifiedTime() time.Time {
	return e.modTime
}

// Size returns the byte length. It is zero for directories.
func (e Entry) Size() uint64 {
	if e.isDir {
		return 0
	}
	return e.size
}

// SetModifiedTime decodes a packed MS-DOS date/time value.
func (e *Entry) SetModifiedTime(raw uint32) {
	e.modTime = DecodeDOSTime(raw)
}

// SetTime sets the modification time directly.
func (e *Entry) SetTime(t time.Time) {
	e.modTime = t
}

// SetLength sets the uncompressed byte length.
func (e *Entry) SetLength(n uint64) {
	e.size = n
}

// SetFlags derives the directory flag from platform attribute bits. Only
// FlagRegular is inspected.
func (e *Entry) SetFlags(flags uint32) {
	e.isDir = flags&FlagRegular == 0
}

// SetDirectory marks the entry as a directory or a file.
func (e *Entry) SetDirectory(dir bool) {
	e.isDir = dir
}

// DecodeDOSTime converts a packed MS-DOS timestamp into UTC. The date lives
// in the high 16 bits, the time in the low 16 bits with 2 second resolution.
// Out of range fields are normalized the way time.Date does.
func DecodeDOSTime(raw uint32) time.Time {
	date := raw >> 16
	clock := raw & 0xffff
	return time.Date(
		int(date>>9&0x7f)+1980,
		time.Month(date>>5&0x0f),
		int(date&0x1f),
		int(clock>>11&0x1f),
		int(clock>>5&0x3f),
		int(clock&0x1f)*2,
		0,
		time.UTC,
	)
}

// EncodeDOSTime packs t (in UTC) into the MS-DOS layout. Years before 1980
// are clamped to 1980-01-01.
func EncodeDOSTime(t time.Time) uint32 {
	t = t.UTC()
	if t.Year() < 1980 {
		return (1<<5 | 1) << 16
	}
	date := uint32(t.Year()-1980)<<9 | uint32(t.Month())<<5 | uint32(t.Day())
	clock := uint32(t.Hour())<<11 | uint32(t.Minute())<<5 | uint32(t.Second()/2)
	return date<<16 | clock
}

func normalizePath(path string) (string, error) {
	p := strings.ReplaceAll(path, `\`, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "", &MalformedPathError{Path: path, Reason: "empty path"}
	}
	if strings.HasPrefix(p, "/") {
		return "", &MalformedPathError{Path: path, Reason: "absolute path"}
	}
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "":
			return "", &MalformedPathError{Path: path, Reason: "empty segment"}
		case ".", "..":
			return "", &MalformedPathError{Path: path, Reason: "relative segment " + part}
		}
	}
	return p, nil
}

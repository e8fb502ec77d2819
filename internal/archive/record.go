package archive

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Record is a raw directory record as supplied by an archive reader.
type Record struct {
	Path   string
	Flags  uint32 // platform attribute bits, see SetFlags
	Time   uint32 // packed MS-DOS date and time
	Length uint64

	// Modified takes precedence over Time when set. Readers fill it from
	// extended timestamp fields, which carry a real time zone.
	Modified time.Time
}

// AddRecord converts r into an Entry and adds it. A path ending in a
// separator is always a directory, whatever the flags say.
func (t *Tree) AddRecord(r Record) error {
	e, err := NewEntry(r.Path)
	if err != nil {
		return err
	}
	e.SetFlags(r.Flags)
	if strings.HasSuffix(r.Path, "/") || strings.HasSuffix(r.Path, `\`) {
		e.SetDirectory(true)
	}
	if r.Modified.IsZero() {
		e.SetModifiedTime(r.Time)
	} else {
		e.SetTime(r.Modified)
	}
	e.SetLength(r.Length)
	return t.AddEntry(e)
}

// FromRecords builds a tree for the archive at name from records. In lenient
// mode records with malformed paths are skipped.
func FromRecords(name string, records []Record, opts ...Option) (*Tree, error) {
	t := New(name, opts...)
	for _, r := range records {
		err := t.AddRecord(r)
		var perr *MalformedPathError
		if t.lenient && errors.As(err, &perr) {
			t.log().Warn("skipping archive entry",
				slog.String("archive", name),
				slog.String("path", r.Path),
				slog.String("reason", perr.Reason))
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	if err := t.Build(); err != nil {
		return nil, err
	}
	return t, nil
}

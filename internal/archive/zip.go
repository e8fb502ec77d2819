package archive

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	creatorUnix = 3
	msdosDir    = 0x10
)

// ReadZipRecords reads the central directory of the ZIP file at path.
// Member data is never decompressed.
func ReadZipRecords(path string) ([]Record, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	defer r.Close()
	return recordsOf(r.File), nil
}

// ReadZipRecordsFrom reads the central directory from r, which holds size
// bytes of ZIP data.
func ReadZipRecordsFrom(r io.ReaderAt, size int64) ([]Record, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read zip: %w", err)
	}
	return recordsOf(zr.File), nil
}

func recordsOf(files []*zip.File) []Record {
	records := make([]Record, 0, len(files))
	for _, f := range files {
		records = append(records, recordOf(&f.FileHeader))
	}
	return records
}

func recordOf(h *zip.FileHeader) Record {
	return Record{
		Path:     h.Name,
		Flags:    zipFlags(h),
		Time:     uint32(h.ModifiedDate)<<16 | uint32(h.ModifiedTime),
		Length:   h.UncompressedSize64,
		Modified: h.Modified,
	}
}

// zipFlags returns Unix mode bits for entries written on Unix and a
// synthesized value for everything else.
func zipFlags(h *zip.FileHeader) uint32 {
	if mode := h.ExternalAttrs >> 16; h.CreatorVersion>>8 == creatorUnix && mode != 0 {
		return mode
	}
	if strings.HasSuffix(h.Name, "/") || h.ExternalAttrs&msdosDir != 0 {
		return 0
	}
	return FlagRegular
}

// OpenZip reads the ZIP file at path and returns its built tree.
func OpenZip(path string, opts ...Option) (*Tree, error) {
	records, err := ReadZipRecords(path)
	if err != nil {
		return nil, err
	}
	t, err := FromRecords(path, records, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.log().Info("opened archive",
		slog.String("archive", path),
		slog.Int("entries", t.Len()))
	return t, nil
}

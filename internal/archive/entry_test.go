package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntryNormalizesPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "a.txt", "a.txt"},
		{"nested", "a/b/c.txt", "a/b/c.txt"},
		{"trailing slash", "dir/", "dir"},
		{"backslashes", `dir\sub\file.txt`, "dir/sub/file.txt"},
		{"trailing backslash", `dir\`, "dir"},
		{"dots inside names", "a..b/.hidden", "a..b/.hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntry(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Path())
		})
	}
}

func TestNewEntryRejectsMalformedPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", "", "empty path"},
		{"only slash", "/", "empty path"},
		{"absolute", "/etc/passwd", "absolute path"},
		{"double slash", "a//b", "empty segment"},
		{"dot", "a/./b", "relative segment ."},
		{"dotdot", "../b", "relative segment .."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntry(tt.input)
			var perr *MalformedPathError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.input, perr.Path)
			assert.Equal(t, tt.reason, perr.Reason)
		})
	}
}

func TestSetFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags uint32
		dir   bool
	}{
		{"zero", 0, true},
		{"unix directory", 0o040755, true},
		{"unix regular file", 0o100644, false},
		{"unix symlink", 0o120777, false},
		{"regular bit only", FlagRegular, false},
		{"other bits ignored", 0x7fff, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Entry
			e.SetFlags(tt.flags)
			assert.Equal(t, tt.dir, e.IsDirectory())
		})
	}
}

func TestEntrySizeOfDirectory(t *testing.T) {
	e, err := NewEntry("dir")
	require.NoError(t, err)
	e.SetLength(512)
	assert.Equal(t, uint64(512), e.Size())

	e.SetDirectory(true)
	assert.Zero(t, e.Size())
}

func TestDecodeDOSTime(t *testing.T) {
	// 2020-05-17 13:45:30
	date := uint32(40<<9 | 5<<5 | 17)
	clock := uint32(13<<11 | 45<<5 | 15)
	got := DecodeDOSTime(date<<16 | clock)
	assert.Equal(t, time.Date(2020, 5, 17, 13, 45, 30, 0, time.UTC), got)

	var e Entry
	e.SetModifiedTime(date<<16 | clock)
	assert.Equal(t, got, e.ModifiedTime())
}

func TestEncodeDOSTime(t *testing.T) {
	ts := time.Date(2107, 12, 31, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, ts, DecodeDOSTime(EncodeDOSTime(ts)))

	odd := time.Date(2001, 2, 3, 4, 5, 7, 0, time.UTC)
	assert.Equal(t, odd.Add(-time.Second), DecodeDOSTime(EncodeDOSTime(odd)))

	early := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), DecodeDOSTime(EncodeDOSTime(early)))
}

package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/lumipallolabs/rex/internal/session"
	"github.com/lumipallolabs/rex/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var magic = []byte("REXMAGIC")

// spacing keeps every signature just past the previous carve block
const spacing = BlockSize + 4096

// prefixDetector matches the test magic and remembers the shortest probe
type prefixDetector struct {
	minLen int
}

func (d *prefixDetector) Detect(b []byte) string {
	if d.minLen == 0 || len(b) < d.minLen {
		d.minLen = len(b)
	}
	if bytes.HasPrefix(b, magic) {
		return "bin"
	}
	return ""
}

type recorder struct {
	progress []Progress
	carved   []CarveResult
	failed   []error
}

func (r *recorder) Progress(p Progress)  { r.progress = append(r.progress, p) }
func (r *recorder) Carved(c CarveResult) { r.carved = append(r.carved, c) }
func (r *recorder) Failed(err error)     { r.failed = append(r.failed, err) }

// image builds a zero-filled image of size with the magic written at each
// offset, followed by a recognisable payload.
func image(size int, offsets ...int) []byte {
	img := make([]byte, size)
	for i, off := range offsets {
		copy(img[off:], magic)
		copy(img[off+len(magic):], fmt.Sprintf("payload-%d", i))
	}
	return img
}

func newSession(t *testing.T, flags session.Flags) *session.Session {
	t.Helper()
	s, err := session.New(t.TempDir(), flags)
	require.NoError(t, err)
	return s
}

func carve(t *testing.T, img []byte, flags session.Flags) (*session.Session, *recorder, Summary) {
	t.Helper()
	s := newSession(t, flags)
	rec := &recorder{}
	c := NewCarver(bytes.NewReader(img), &prefixDetector{}, s, Options{Path: "test.img", Reporter: rec})
	sum, err := c.Run()
	require.NoError(t, err)
	return s, rec, sum
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestCarveSeparatedSignatures(t *testing.T) {
	offsets := []int{0, spacing, 2 * spacing}
	img := image(offsets[2]+BlockSize+8192, offsets...)

	s, rec, sum := carve(t, img, session.Flags{All: true})

	assert.Equal(t, 3, sum.Carved)
	assert.Equal(t, 0, sum.Failed)
	require.Len(t, rec.carved, 3)
	for i, off := range offsets {
		r := rec.carved[i]
		assert.Equal(t, int64(off), r.Offset)
		assert.Equal(t, "bin", r.Ext)
		assert.Equal(t, int64(BlockSize), r.Size)
		assert.Equal(t, filepath.Join(s.Dir, fmt.Sprintf("file_%d_%d.bin", i, off)), r.Path)
		assert.Empty(t, r.Digest)

		got, err := os.ReadFile(r.Path)
		require.NoError(t, err)
		assert.Equal(t, img[off:off+BlockSize], got)
	}
}

func TestSignaturesInsideCarvedBlockAreSkipped(t *testing.T) {
	img := image(BlockSize+8192, 0, 4096)

	s, _, sum := carve(t, img, session.Flags{All: true})

	assert.Equal(t, 1, sum.Carved)
	assert.Equal(t, []string{"file_0_0.bin"}, listDir(t, s.Dir))
}

func TestOnlyDeletedSkipsReservedArea(t *testing.T) {
	img := image(600000+BlockSize+8192, 1024, 600000)

	s, _, sum := carve(t, img, session.Flags{OnlyDeleted: true})
	assert.Equal(t, 1, sum.Carved)
	assert.Equal(t, []string{"file_0_600000.bin"}, listDir(t, s.Dir))

	// without the flag the early hit wins and its block covers the later one
	s, _, sum = carve(t, img, session.Flags{})
	assert.Equal(t, 1, sum.Carved)
	assert.Equal(t, []string{"file_0_1024.bin"}, listDir(t, s.Dir))
}

func TestCarveLimit(t *testing.T) {
	var offsets []int
	for i := 0; i < 15; i++ {
		offsets = append(offsets, i*spacing)
	}
	img := image(offsets[14]+BlockSize+8192, offsets...)

	s, _, sum := carve(t, img, session.Flags{})
	assert.Equal(t, session.MaxCarves, sum.Carved)
	assert.Len(t, listDir(t, s.Dir), session.MaxCarves)
	// the scan stops right after the last allowed block
	assert.Equal(t, int64(offsets[session.MaxCarves-1]+BlockSize), sum.BytesScanned)

	s, _, sum = carve(t, img, session.Flags{All: true})
	assert.Equal(t, 15, sum.Carved)
	assert.Len(t, listDir(t, s.Dir), 15)
}

func TestCarveIsDeterministic(t *testing.T) {
	img := image(2*spacing+BlockSize+8192, 64, spacing+128, 2*spacing)

	a, _, _ := carve(t, img, session.Flags{All: true})
	b, _, _ := carve(t, img, session.Flags{All: true})

	names := listDir(t, a.Dir)
	require.Equal(t, names, listDir(t, b.Dir))
	for _, name := range names {
		x, err := os.ReadFile(filepath.Join(a.Dir, name))
		require.NoError(t, err)
		y, err := os.ReadFile(filepath.Join(b.Dir, name))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(x, y), name)
	}
}

func TestShortImageEndsScan(t *testing.T) {
	img := image(5000, 0)

	s, _, sum := carve(t, img, session.Flags{All: true})

	assert.Equal(t, 0, sum.Carved)
	assert.Equal(t, int64(0), sum.BytesScanned)
	assert.Empty(t, listDir(t, s.Dir))
}

func TestCarveAtEndOfDeviceIsShort(t *testing.T) {
	img := image(10000, 0)

	_, rec, sum := carve(t, img, session.Flags{All: true})

	assert.Equal(t, 1, sum.Carved)
	require.Len(t, rec.carved, 1)
	assert.Equal(t, int64(10000), rec.carved[0].Size)

	got, err := os.ReadFile(rec.carved[0].Path)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestProbeAlwaysSeesMoreThanMinTail(t *testing.T) {
	img := image(3 * WindowSize)
	det := &prefixDetector{}
	c := NewCarver(bytes.NewReader(img), det, newSession(t, session.Flags{}), Options{})

	_, err := c.Run()
	require.NoError(t, err)
	assert.Greater(t, det.minLen, MinTail)
}

type failingSource struct {
	*bytes.Reader
	failAt int64
}

func (f failingSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= f.failAt {
		return 0, errors.New("device unplugged")
	}
	return f.Reader.ReadAt(p, off)
}

func TestSourceReadErrorAbortsScan(t *testing.T) {
	src := failingSource{Reader: bytes.NewReader(make([]byte, 4*WindowSize)), failAt: 4096}
	c := NewCarver(src, &prefixDetector{}, newSession(t, session.Flags{}), Options{Path: "/dev/broken"})

	_, err := c.Run()
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "read", srcErr.Op)
	assert.Equal(t, "/dev/broken", srcErr.Path)
	assert.Equal(t, int64(4096), srcErr.Offset)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestOutputErrorContinuesScan(t *testing.T) {
	img := image(spacing+BlockSize+8192, 0, spacing)
	s := newSession(t, session.Flags{All: true})
	require.NoError(t, os.Mkdir(s.CarvePath(0, "bin"), 0755))

	rec := &recorder{}
	c := NewCarver(bytes.NewReader(img), &prefixDetector{}, s, Options{Reporter: rec})
	sum, err := c.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Carved)
	require.Len(t, rec.failed, 1)
	var outErr *session.OutputError
	assert.ErrorAs(t, rec.failed[0], &outErr)

	// the failed carve did not consume a counter value
	require.Len(t, rec.carved, 1)
	assert.Equal(t, filepath.Join(s.Dir, fmt.Sprintf("file_0_%d.bin", spacing)), rec.carved[0].Path)
}

func TestProgressReportsFinalCursor(t *testing.T) {
	img := image(spacing+BlockSize+8192, 0, spacing)

	_, rec, sum := carve(t, img, session.Flags{All: true})

	require.NotEmpty(t, rec.progress)
	first, last := rec.progress[0], rec.progress[len(rec.progress)-1]
	assert.Equal(t, int64(0), first.Offset)
	assert.Equal(t, sum.BytesScanned, last.Offset)
	assert.Equal(t, int64(len(img)), last.Size)
	assert.Equal(t, 2, last.Carved)
}

func TestCarveDigest(t *testing.T) {
	img := image(10000, 0)
	rec := &recorder{}
	c := NewCarver(bytes.NewReader(img), &prefixDetector{}, newSession(t, session.Flags{}),
		Options{Digest: DigestXXH64, Reporter: rec})

	_, err := c.Run()
	require.NoError(t, err)
	require.Len(t, rec.carved, 1)
	assert.Equal(t, fmt.Sprintf("%016x", xxhash.Sum64(img)), rec.carved[0].Digest)
}

func TestCarveWithSignatureDetector(t *testing.T) {
	img := make([]byte, 10000)
	copy(img, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"))

	s := newSession(t, session.Flags{})
	c := NewCarver(bytes.NewReader(img), signature.NewDetector(), s, Options{})
	sum, err := c.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Carved)
	assert.Equal(t, []string{"file_0_0.png"}, listDir(t, s.Dir))
}

func TestCarveELFWithSignatureDetector(t *testing.T) {
	img := make([]byte, 10000)
	copy(img, []byte{0x7F, 'E', 'L', 'F', 2, 1, 1})
	img[16] = 2

	s := newSession(t, session.Flags{})
	c := NewCarver(bytes.NewReader(img), signature.NewDetector(), s, Options{})
	sum, err := c.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Carved)
	assert.Equal(t, []string{"file_0_0.elf"}, listDir(t, s.Dir))
}

func TestParseDigest(t *testing.T) {
	for in, want := range map[string]DigestKind{
		"":      DigestNone,
		"md5":   DigestMD5,
		"SHA1":  DigestSHA1,
		"xxh64": DigestXXH64,
	} {
		got, err := ParseDigest(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDigest("crc32")
	assert.Error(t, err)
}

func TestDigestSum(t *testing.T) {
	data := []byte("abc")
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", DigestMD5.Sum(data))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", DigestSHA1.Sum(data))
	assert.Len(t, DigestXXH64.Sum(data), 16)
	assert.Empty(t, DigestNone.Sum(data))
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0.0, Progress{Offset: 10, Size: -1}.Percent())
	assert.Equal(t, 0.5, Progress{Offset: 50, Size: 100}.Percent())
	assert.Equal(t, 1.0, Progress{Offset: 150, Size: 100}.Percent())
}

package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	duration time.Duration
	err      error
}

func (f fakeProber) Probe(context.Context, string) (*ProbeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ProbeResult{Duration: f.duration, VideoStreams: []VideoStream{{Codec: "h264"}}}, nil
}

// fakeExecutor writes an output file whose size depends on whether the
// arguments ask for a stream copy.
type fakeExecutor struct {
	calls      [][]string
	copyBytes  int
	encodeSize int
	err        error
}

func (f *fakeExecutor) Run(ctx context.Context, args []string) error {
	f.calls = append(f.calls, args)
	out := args[len(args)-1]
	n := f.encodeSize
	if slices.Contains(args, "copy") {
		n = f.copyBytes
	}
	if err := os.WriteFile(out, make([]byte, n), 0o644); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return ctx.Err()
}

func writeSource(t *testing.T, size int) File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "My Clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	f, err := OpenFile(path)
	require.NoError(t, err)
	return f
}

func newTestPreprocessor(t *testing.T, exec *fakeExecutor) *Preprocessor {
	t.Helper()
	return &Preprocessor{Executor: exec, Prober: fakeProber{duration: 120 * time.Second}, WorkDir: t.TempDir()}
}

func argValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestPreprocessOriginalStreamCopies(t *testing.T) {
	exec := &fakeExecutor{copyBytes: 100}
	p := newTestPreprocessor(t, exec)
	src := writeSource(t, 1000)
	profile, _ := DefaultProfileLibrary().Get(ProfileOriginal)

	out, err := p.Preprocess(context.Background(), src, TrimRange{Start: 10 * time.Second, End: 30 * time.Second}, profile)
	require.NoError(t, err)

	require.Len(t, exec.calls, 1)
	args := exec.calls[0]
	assert.Equal(t, src.Path, argValue(args, "-i"))
	assert.Equal(t, "10", argValue(args, "-ss"))
	assert.Equal(t, "30", argValue(args, "-to"))
	assert.Equal(t, "copy", argValue(args, "-c"))
	assert.NotContains(t, args, "-crf")

	assert.Equal(t, "optimized-My Clip.mp4", out.Name)
	assert.Equal(t, "video/mp4", out.ContentType)
	assert.Equal(t, int64(100), out.Size)
	assert.FileExists(t, out.Path)

	require.NoError(t, p.Discard(out))
	assert.NoFileExists(t, out.Path)
	assert.FileExists(t, src.Path, "source is never touched")
}

func TestPreprocessCompressedReencodes(t *testing.T) {
	exec := &fakeExecutor{encodeSize: 80, copyBytes: 170}
	p := newTestPreprocessor(t, exec)
	src := writeSource(t, 1000)
	profile, _ := DefaultProfileLibrary().Get(ProfileCompressed)

	out, err := p.Preprocess(context.Background(), src, TrimRange{Start: 10 * time.Second, End: 30 * time.Second}, profile)
	require.NoError(t, err)

	args := exec.calls[0]
	assert.Equal(t, "libx264", argValue(args, "-vcodec"))
	assert.Equal(t, "32", argValue(args, "-crf"))
	assert.Equal(t, "ultrafast", argValue(args, "-preset"))

	require.Len(t, exec.calls, 2, "re-encode is measured against a stream copy")
	copyArgs := exec.calls[1]
	assert.Equal(t, "copy", argValue(copyArgs, "-c"))
	assert.Equal(t, "10", argValue(copyArgs, "-ss"))
	assert.Equal(t, "30", argValue(copyArgs, "-to"))

	assert.Equal(t, int64(80), out.Size)
	entries, err := os.ReadDir(filepath.Dir(out.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "comparison copy is removed")
}

func TestPreprocessKeepsCopyWhenReencodeIsLarger(t *testing.T) {
	// 400 bytes is under the 1000-byte source but over a copy of the same range.
	exec := &fakeExecutor{encodeSize: 400, copyBytes: 170}
	p := newTestPreprocessor(t, exec)
	src := writeSource(t, 1000)
	profile, _ := DefaultProfileLibrary().Get(ProfileCompressed)

	out, err := p.Preprocess(context.Background(), src, TrimRange{Start: 10 * time.Second, End: 30 * time.Second}, profile)
	require.NoError(t, err)

	assert.Equal(t, int64(170), out.Size)
	assert.Equal(t, "optimized-My Clip.mp4", out.Name)
	info, err := os.Stat(out.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(170), info.Size())

	entries, err := os.ReadDir(filepath.Dir(out.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPreprocessZeroEndMeansWholeClip(t *testing.T) {
	exec := &fakeExecutor{copyBytes: 10}
	p := newTestPreprocessor(t, exec)
	profile, _ := DefaultProfileLibrary().Get(ProfileOriginal)

	_, err := p.Preprocess(context.Background(), writeSource(t, 100), TrimRange{Start: 2500 * time.Millisecond}, profile)
	require.NoError(t, err)
	assert.Equal(t, "2.5", argValue(exec.calls[0], "-ss"))
	assert.Equal(t, "120", argValue(exec.calls[0], "-to"))
}

func TestPreprocessRejectsBadRanges(t *testing.T) {
	profile, _ := DefaultProfileLibrary().Get(ProfileOriginal)
	for name, trim := range map[string]TrimRange{
		"negative start":  {Start: -time.Second, End: 10 * time.Second},
		"start after end": {Start: 30 * time.Second, End: 10 * time.Second},
		"empty range":     {Start: 10 * time.Second, End: 10 * time.Second},
		"past the end":    {Start: 0, End: 121 * time.Second},
	} {
		t.Run(name, func(t *testing.T) {
			exec := &fakeExecutor{}
			p := newTestPreprocessor(t, exec)
			_, err := p.Preprocess(context.Background(), writeSource(t, 100), trim, profile)

			var fe *FailureError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "validate", fe.Stage)
			assert.Empty(t, exec.calls)
		})
	}
}

func TestPreprocessRejectsNonVideo(t *testing.T) {
	p := newTestPreprocessor(t, &fakeExecutor{})
	_, err := p.Preprocess(context.Background(), File{Path: "/tmp/a.png", Name: "a.png", ContentType: "image/png"}, TrimRange{}, Profile{})
	assert.ErrorIs(t, err, ErrNotVideo)
}

func TestPreprocessFailureRemovesPartialOutput(t *testing.T) {
	exec := &fakeExecutor{copyBytes: 50, err: errors.New("exit status 1")}
	p := newTestPreprocessor(t, exec)
	src := writeSource(t, 100)
	profile, _ := DefaultProfileLibrary().Get(ProfileOriginal)

	out, err := p.PreprocessOrOriginal(context.Background(), src, TrimRange{End: 5 * time.Second}, profile)

	var fe *FailureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "encode", fe.Stage)
	assert.Equal(t, src, out, "falls back to the untouched original")

	entries, readErr := os.ReadDir(p.WorkDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestPreprocessCancelled(t *testing.T) {
	exec := &fakeExecutor{copyBytes: 50}
	p := newTestPreprocessor(t, exec)
	profile, _ := DefaultProfileLibrary().Get(ProfileOriginal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Preprocess(ctx, writeSource(t, 100), TrimRange{End: 5 * time.Second}, profile)
	assert.ErrorIs(t, err, context.Canceled)

	entries, _ := os.ReadDir(p.WorkDir)
	assert.Empty(t, entries)
}

func TestDiscardIgnoresForeignFiles(t *testing.T) {
	p := newTestPreprocessor(t, &fakeExecutor{})
	src := writeSource(t, 10)
	require.NoError(t, p.Discard(src))
	assert.FileExists(t, src.Path)
}

func TestProfileArgs(t *testing.T) {
	lib := DefaultProfileLibrary()
	assert.Equal(t, []string{ProfileBalanced, ProfileCompressed, ProfileOriginal}, lib.Names())

	balanced, ok := lib.Get(ProfileBalanced)
	require.True(t, ok)
	assert.Equal(t, []string{"-vcodec", "libx264", "-crf", "28", "-preset", "ultrafast"}, balanced.Args())

	original, _ := lib.Get(ProfileOriginal)
	assert.Equal(t, []string{"-c", "copy"}, original.Args())

	_, ok = lib.Get("missing")
	assert.False(t, ok)
}

func TestLoadProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`profiles:
  balanced:
    video_codec: libx265
    crf: 26
    preset: fast
  web:
    video_codec: libx264
    crf: 30
    preset: veryfast
    audio_codec: aac
    extra_args:
      - -movflags
      - +faststart
`), 0o644))

	lib, err := LoadProfileFile(path)
	require.NoError(t, err)

	balanced, _ := lib.Get(ProfileBalanced)
	assert.Equal(t, "libx265", balanced.VideoCodec)
	assert.Equal(t, 26, balanced.CRF)

	web, ok := lib.Get("web")
	require.True(t, ok)
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, []string{"-vcodec", "libx264", "-crf", "30", "-preset", "veryfast", "-acodec", "aac", "-movflags", "+faststart"}, web.Args())

	_, ok = lib.Get(ProfileCompressed)
	assert.True(t, ok, "built-ins survive")
}

func TestLoadProfileFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  bad:\n    crf: 20\n"), 0o644))
	_, err := LoadProfileFile(path)
	assert.ErrorContains(t, err, "video_codec")
}

func TestParseProbeOutput(t *testing.T) {
	res, err := parseProbeOutput([]byte(`{
  "streams": [
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"}
  ],
  "format": {"duration": "120.500000"}
}`))
	require.NoError(t, err)
	assert.Equal(t, 120500*time.Millisecond, res.Duration)
	require.Len(t, res.VideoStreams, 1)
	assert.Equal(t, 1920, res.VideoStreams[0].Width)
	assert.InDelta(t, 29.97, res.VideoStreams[0].FrameRate, 0.01)

	_, err = parseProbeOutput([]byte(`{"streams":[{"codec_type":"audio"}],"format":{}}`))
	assert.ErrorIs(t, err, ErrNoVideoStreams)

	_, err = parseProbeOutput([]byte(`not json`))
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short\n", 10))
	assert.True(t, strings.HasSuffix(tail(strings.Repeat("x", 20)+"end", 3), "end"))
}

// Package media trims and re-encodes video clips on the operator's machine
// before they are uploaded. It shells out to ffmpeg and ffprobe.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/visualink/studio/internal/upload"
)

// ErrNotVideo is returned for inputs whose content type is not video/*.
var ErrNotVideo = errors.New("media: input is not a video")

// File is a local media file.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// OpenFile describes the file at path, resolving its content type from the
// extension.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	return File{
		Path:        path,
		Name:        name,
		ContentType: upload.ResolveContentType(name),
		Size:        info.Size(),
	}, nil
}

// TrimRange selects [Start, End) of a clip. A zero End means the end of the clip.
type TrimRange struct {
	Start time.Duration
	End   time.Duration
}

// resolve fills a zero End from duration and checks 0 <= start < end <= duration.
func (r TrimRange) resolve(duration time.Duration) (TrimRange, error) {
	if r.End == 0 {
		r.End = duration
	}
	switch {
	case r.Start < 0:
		return r, fmt.Errorf("trim start %s is negative", r.Start)
	case r.Start >= r.End:
		return r, fmt.Errorf("trim start %s must be before end %s", r.Start, r.End)
	case duration > 0 && r.End > duration:
		return r, fmt.Errorf("trim end %s exceeds clip duration %s", r.End, duration)
	}
	return r, nil
}

// FailureError reports a preprocessing failure. The source file is never
// modified, so the caller may upload it as-is.
type FailureError struct {
	Stage string
	Err   error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("preprocess %s: %v", e.Stage, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// Preprocessor runs trims through an Executor.
type Preprocessor struct {
	Executor Executor
	Prober   Prober
	WorkDir  string // defaults to os.TempDir()
	Logger   *slog.Logger
}

// NewPreprocessor returns a Preprocessor backed by the host's ffmpeg and ffprobe.
func NewPreprocessor(workDir string, log *slog.Logger) *Preprocessor {
	return &Preprocessor{
		Executor: &LocalExecutor{},
		Prober:   &LocalProber{},
		WorkDir:  workDir,
		Logger:   log,
	}
}

// Preprocess writes the trimmed clip to a fresh work directory as
// "optimized-<name>" and returns it. Partial output is removed on failure or
// cancellation. Callers remove a successful result with Discard.
func (p *Preprocessor) Preprocess(ctx context.Context, src File, trim TrimRange, profile Profile) (File, error) {
	if !upload.IsVideo(src.ContentType) {
		return File{}, ErrNotVideo
	}
	log := p.logger().With(slog.String("file", src.Name), slog.String("profile", profile.Name))

	probe, err := p.Prober.Probe(ctx, src.Path)
	if err != nil {
		return File{}, &FailureError{Stage: "probe", Err: err}
	}
	trim, err = trim.resolve(probe.Duration)
	if err != nil {
		return File{}, &FailureError{Stage: "validate", Err: err}
	}

	dir := filepath.Join(p.workDir(), "optimize-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return File{}, &FailureError{Stage: "workdir", Err: err}
	}
	out := File{
		Path:        filepath.Join(dir, "optimized-"+src.Name),
		Name:        "optimized-" + src.Name,
		ContentType: src.ContentType,
	}

	start := time.Now()
	size, err := p.run(ctx, src, out.Path, trim, profile)
	if err == nil && !profile.StreamCopy {
		size, err = p.keepSmaller(ctx, log, src, out.Path, size, trim)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		if ctx.Err() != nil {
			return File{}, &FailureError{Stage: "encode", Err: ctx.Err()}
		}
		return File{}, &FailureError{Stage: "encode", Err: err}
	}
	out.Size = size

	log.Info("clip preprocessed",
		slog.Duration("start", trim.Start),
		slog.Duration("end", trim.End),
		slog.Int64("source_bytes", src.Size),
		slog.Int64("output_bytes", out.Size),
		slog.Duration("took", time.Since(start)),
	)
	return out, nil
}

// PreprocessOrOriginal is Preprocess that falls back to src on failure. The
// failure is still returned so the caller can report it.
func (p *Preprocessor) PreprocessOrOriginal(ctx context.Context, src File, trim TrimRange, profile Profile) (File, error) {
	out, err := p.Preprocess(ctx, src, trim, profile)
	if err != nil {
		return src, err
	}
	return out, nil
}

// Discard removes a file produced by Preprocess along with its work
// directory. It is a no-op for any other file.
func (p *Preprocessor) Discard(f File) error {
	dir := filepath.Dir(f.Path)
	if filepath.Dir(dir) != filepath.Clean(p.workDir()) || !isWorkDirName(filepath.Base(dir)) {
		return nil
	}
	return os.RemoveAll(dir)
}

// keepSmaller cuts the same range as a stream copy next to the re-encoded
// file at outPath and keeps whichever is smaller under outPath.
func (p *Preprocessor) keepSmaller(ctx context.Context, log *slog.Logger, src File, outPath string, encoded int64, trim TrimRange) (int64, error) {
	copyPath := filepath.Join(filepath.Dir(outPath), "copy-"+filepath.Base(outPath))
	copied, err := p.run(ctx, src, copyPath, trim, Profile{Name: ProfileOriginal, StreamCopy: true})
	if err != nil {
		return 0, err
	}
	if encoded <= copied {
		return encoded, os.Remove(copyPath)
	}
	log.Warn("re-encode larger than stream copy of the same range, keeping the copy",
		slog.Int64("copy_bytes", copied),
		slog.Int64("encoded_bytes", encoded),
	)
	if err := os.Rename(copyPath, outPath); err != nil {
		return 0, err
	}
	return copied, nil
}

func (p *Preprocessor) run(ctx context.Context, src File, outPath string, trim TrimRange, profile Profile) (int64, error) {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", src.Path,
		"-ss", seconds(trim.Start),
		"-to", seconds(trim.End),
	}
	args = append(args, profile.Args()...)
	args = append(args, outPath)

	if err := p.Executor.Run(ctx, args); err != nil {
		return 0, err
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("ffmpeg produced no output: %w", err)
	}
	return info.Size(), nil
}

func (p *Preprocessor) workDir() string {
	if p.WorkDir != "" {
		return p.WorkDir
	}
	return os.TempDir()
}

func (p *Preprocessor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func isWorkDirName(name string) bool {
	const prefix = "optimize-"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}
	_, err := uuid.Parse(name[len(prefix):])
	return err == nil
}

// seconds formats d as ffmpeg's decimal seconds, e.g. "10" or "12.5".
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoVideoStreams is returned when a probed file has no video stream.
var ErrNoVideoStreams = errors.New("no video streams found")

// VideoStream describes one video stream reported by ffprobe.
type VideoStream struct {
	Codec     string
	Width     int
	Height    int
	FrameRate float64
}

// ProbeResult is the subset of ffprobe output the preprocessor uses.
type ProbeResult struct {
	Duration     time.Duration
	VideoStreams []VideoStream
}

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// LocalProber runs ffprobe on the host.
type LocalProber struct {
	Binary string // defaults to "ffprobe" in PATH
}

// Probe runs ffprobe with JSON output and parses it.
func (p *LocalProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("probe: path is empty")
	}
	bin := strings.TrimSpace(p.Binary)
	if bin == "" {
		bin = "ffprobe"
	}
	out, err := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(data []byte) (*ProbeResult, error) {
	var payload struct {
		Streams []struct {
			CodecType    string `json:"codec_type"`
			CodecName    string `json:"codec_name"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	res := &ProbeResult{}
	for _, s := range payload.Streams {
		if s.CodecType != "video" {
			continue
		}
		res.VideoStreams = append(res.VideoStreams, VideoStream{
			Codec:     s.CodecName,
			Width:     s.Width,
			Height:    s.Height,
			FrameRate: parseRate(s.AvgFrameRate),
		})
	}
	if len(res.VideoStreams) == 0 {
		return nil, ErrNoVideoStreams
	}
	if payload.Format.Duration != "" {
		secs, err := strconv.ParseFloat(payload.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", payload.Format.Duration, err)
		}
		res.Duration = time.Duration(secs * float64(time.Second))
	}
	return res, nil
}

// parseRate converts "30000/1001" or "25" to frames per second.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

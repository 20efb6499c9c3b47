package transcription

import (
	"context"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultDurationMinutes is assumed when the duration cannot be probed
const DefaultDurationMinutes = 5

// DurationProber reports the length of a media file in whole minutes
type DurationProber interface {
	Minutes(ctx context.Context, path string) int
}

// FFProbe shells out to ffprobe
type FFProbe struct {
	bin    string
	logger *zap.Logger
}

// NewFFProbe creates a prober; an empty bin means "ffprobe" on PATH
func NewFFProbe(bin string, logger *zap.Logger) *FFProbe {
	if bin == "" {
		bin = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFProbe{bin: bin, logger: logger}
}

// Minutes rounds the container duration up to whole minutes
func (p *FFProbe) Minutes(ctx context.Context, path string) int {
	out, err := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		p.logger.Warn("⚠️ ffprobe failed, using default duration", zap.String("path", path), zap.Error(err))
		return DefaultDurationMinutes
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds <= 0 {
		p.logger.Warn("⚠️ ffprobe returned no duration, using default", zap.String("output", string(out)))
		return DefaultDurationMinutes
	}
	return int(math.Ceil(seconds / 60))
}

package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"vodstream/internal/domain"
	"vodstream/internal/metrics"
)

const (
	defaultEncodeTimeout = time.Hour
	defaultProbeTimeout  = 30 * time.Second
)

// Runner executes ffmpeg/ffprobe synchronously and captures exit status and
// stderr. Every invocation carries an explicit outer timeout instead of
// relying on the dispatcher's job timeout.
type Runner struct {
	ffmpeg        string
	ffprobe       string
	encodeTimeout time.Duration
	probeTimeout  time.Duration
	thumbnailAt   string
	logger        *slog.Logger
}

type Option func(*Runner)

func WithEncodeTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.encodeTimeout = d
		}
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.probeTimeout = d
		}
	}
}

func WithThumbnailTimestamp(ts string) Option {
	return func(r *Runner) {
		if strings.TrimSpace(ts) != "" {
			r.thumbnailAt = ts
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func New(ffmpegPath, ffprobePath string, opts ...Option) *Runner {
	r := &Runner{
		ffmpeg:        strings.TrimSpace(ffmpegPath),
		ffprobe:       strings.TrimSpace(ffprobePath),
		encodeTimeout: defaultEncodeTimeout,
		probeTimeout:  defaultProbeTimeout,
		thumbnailAt:   "00:00:05",
	}
	if r.ffmpeg == "" {
		r.ffmpeg = "ffmpeg"
	}
	if r.ffprobe == "" {
		r.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// DurationSeconds probes the container duration, truncated to whole seconds.
// Zero is the sentinel for "unknown": parse failures and non-zero exits are
// folded into it rather than surfaced.
func (r *Runner) DurationSeconds(ctx context.Context, inputPath string) int {
	stdout, _, err := r.run(ctx, r.ffprobe, BuildProbeArgs(inputPath), r.probeTimeout)
	if err != nil {
		r.logger.Warn("ffprobe duration failed",
			slog.String("input", inputPath),
			slog.String("error", err.Error()),
		)
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout), 64)
	if err != nil || seconds <= 0 {
		r.logger.Warn("ffprobe duration unparseable",
			slog.String("input", inputPath),
			slog.String("output", strings.TrimSpace(stdout)),
		)
		return 0
	}
	return int(seconds)
}

// Thumbnail extracts a single frame into outputPath.
func (r *Runner) Thumbnail(ctx context.Context, inputPath, outputPath string) error {
	_, _, err := r.run(ctx, r.ffmpeg, BuildThumbnailArgs(inputPath, outputPath, r.thumbnailAt), r.encodeTimeout)
	return err
}

// ConvertHLS encodes inputPath into segments plus manifest under outputDir.
func (r *Runner) ConvertHLS(ctx context.Context, inputPath, outputDir string, q domain.Quality) error {
	start := time.Now()
	_, _, err := r.run(ctx, r.ffmpeg, BuildHLSArgs(inputPath, outputDir, q), r.encodeTimeout)
	metrics.EncodeDuration.Observe(time.Since(start).Seconds())
	return err
}

// ConvertMP4 re-encodes inputPath into a progressive MP4 at outputPath.
func (r *Runner) ConvertMP4(ctx context.Context, inputPath, outputPath string, q domain.Quality) error {
	start := time.Now()
	_, _, err := r.run(ctx, r.ffmpeg, BuildConvertArgs(inputPath, outputPath, q), r.encodeTimeout)
	metrics.EncodeDuration.Observe(time.Since(start).Seconds())
	return err
}

func (r *Runner) run(ctx context.Context, binary string, args []string, timeout time.Duration) (string, string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.logger.Debug("running encoder command",
		slog.String("binary", binary),
		slog.String("args", strings.Join(args, " ")),
	)

	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.String(), diag, fmt.Errorf("%s timed out: %w", binary, ctxErr)
		}
		if diag == "" {
			return stdout.String(), diag, fmt.Errorf("%s failed: %w", binary, err)
		}
		return stdout.String(), diag, fmt.Errorf("%s failed: %w: %s", binary, err, diag)
	}
	return stdout.String(), strings.TrimSpace(stderr.String()), nil
}

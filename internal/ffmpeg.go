package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/framefile/framefile/common"
)

// FFmpeg wraps one running external codec process. The pipelines talk to it
// only through its stdin/stdout byte streams; the streams carry no framing of
// their own, frame boundaries exist purely in this tool's header format.
type FFmpeg struct {
	path   string
	cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
}

// StartEncoder launches ffmpeg reading raw rgb24 frames on stdin and writing
// a lossless-compressed video to outPath.
func StartEncoder(ctx context.Context, o Options, outPath string) (*FFmpeg, error) {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", o.Width, o.Height),
		"-r", strconv.Itoa(o.FrameRate),
		"-i", "-",
		"-c:v", o.Codec,
	}
	if o.Codec == common.CodecH264RGB {
		// qp 0 makes H.264 mathematically lossless
		args = append(args, "-qp", "0")
	}
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, o.FFmpegPath, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin pipe %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s %w", o.FFmpegPath, err)
	}
	return &FFmpeg{path: o.FFmpegPath, cmd: cmd, Stdin: stdin}, nil
}

// StartDecoder launches ffmpeg decoding inPath back into the raw rgb24 frame
// stream on stdout.
func StartDecoder(ctx context.Context, o Options, inPath string) (*FFmpeg, error) {
	args := []string{
		"-loglevel", "error",
		"-i", inPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	}

	cmd := exec.CommandContext(ctx, o.FFmpegPath, args...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout pipe %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s %w", o.FFmpegPath, err)
	}
	return &FFmpeg{path: o.FFmpegPath, cmd: cmd, Stdout: stdout}, nil
}

// CloseInput closes the process's stdin so an encoder can flush and finish.
func (f *FFmpeg) CloseInput() error {
	if f.Stdin == nil {
		return nil
	}
	return f.Stdin.Close()
}

// Wait reaps the process after its streams have been drained or closed.
func (f *FFmpeg) Wait() error {
	if err := f.cmd.Wait(); err != nil {
		return fmt.Errorf("waiting for %s %w", f.path, err)
	}
	return nil
}

// Close tears the process down. It is safe on every exit path, including
// after a successful Wait, so callers can defer it unconditionally.
func (f *FFmpeg) Close() {
	if f.Stdin != nil {
		f.Stdin.Close()
	}
	if f.Stdout != nil {
		f.Stdout.Close()
	}
	if f.cmd.ProcessState == nil && f.cmd.Process != nil {
		_ = f.cmd.Process.Kill()
		_ = f.cmd.Wait()
	}
}

package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	slices "golang.org/x/exp/slices"

	"github.com/framefile/framefile/common"
)

var version = "0.1.0"

func GetVersion() string {
	return version
}

type Options struct {
	Width            int
	Height           int
	FrameRate        int
	Codec            string
	FFmpegPath       string
	QueueFrames      int
	ProgressInterval time.Duration
	ShowSummary      bool
	Indent           bool
	Version          bool
}

func CreateDefaultOptions() Options {
	return Options{
		Width:            common.DefaultWidth,
		Height:           common.DefaultHeight,
		FrameRate:        common.DefaultFrameRate,
		Codec:            common.CodecFFV1,
		FFmpegPath:       "ffmpeg",
		QueueFrames:      common.DefaultQueueFrames,
		ProgressInterval: time.Second,
		ShowSummary:      true,
	}
}

// AllowedCodecs are the codecs known to produce bit-exact video.
var AllowedCodecs = []string{common.CodecFFV1, common.CodecH264RGB}

func (o Options) Validate() error {
	geo := Geometry{Width: o.Width, Height: o.Height}
	if err := geo.Validate(); err != nil {
		return err
	}
	if o.FrameRate <= 0 {
		return fmt.Errorf("invalid frame rate %d", o.FrameRate)
	}
	if o.QueueFrames <= 0 {
		return fmt.Errorf("invalid queue capacity %d", o.QueueFrames)
	}
	if !slices.Contains(AllowedCodecs, o.Codec) {
		return fmt.Errorf("codec %q is not lossless, use one of %v", o.Codec, AllowedCodecs)
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT, so a stream loop can
// stop reading data any time the user interrupts.
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/framefile/framefile/internal"
)

var usg = `Usage of %s:

%s stores an arbitrary file inside a lossless video and restores it back,
bit for bit. Frames are raw rgb24 buffers piped through ffmpeg; each frame
carries its own index and payload length.

Subcommands:
  encode <input_file> <output_video>   pack a file into a video
  decode <input_video> <output_file>   restore the original file
  encode-image <input_file> <output_png>   pack a file into a single PNG
  decode-image <input_png> <output_file>   restore a file from a PNG
  probe  <video>                       inspect a produced container (mp4/ts)

The frame geometry, codec, and ffmpeg path used for encode must be repeated
for decode of the same video.
`

func usage() {
	parts := strings.Split(os.Args[0], "/")
	name := parts[len(parts)-1]
	fmt.Fprintf(os.Stderr, usg, name, name)
	fmt.Fprintf(os.Stderr, "\nRun as: %s <subcommand> [options] <args> with options:\n\n", name)
}

func parseOptions(sub string, args []string) (internal.Options, []string) {
	o := internal.CreateDefaultOptions()
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	fs.IntVar(&o.Width, "width", o.Width, "frame width in pixels")
	fs.IntVar(&o.Height, "height", o.Height, "frame height in pixels")
	fs.IntVar(&o.FrameRate, "fps", o.FrameRate, "frame rate of the produced video")
	fs.StringVar(&o.Codec, "codec", o.Codec, `lossless video codec ("ffv1" for mkv/avi, "libx264rgb" for mp4/ts)`)
	fs.StringVar(&o.FFmpegPath, "ffmpeg", o.FFmpegPath, "path to the ffmpeg binary")
	fs.IntVar(&o.QueueFrames, "queue", o.QueueFrames, "max frames buffered between file reader and encoder")
	fs.DurationVar(&o.ProgressInterval, "progress", o.ProgressInterval, "progress report interval (0 disables)")
	fs.BoolVar(&o.ShowSummary, "summary", o.ShowSummary, "print a JSON summary of the pipeline counters")
	fs.BoolVar(&o.Indent, "indent", o.Indent, "indent JSON output")
	fs.BoolVar(&o.Version, "version", false, "print version")
	fs.Usage = func() {
		usage()
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	if o.Version {
		fmt.Printf("framefile version %s\n", internal.GetVersion())
		os.Exit(0)
	}
	return o, fs.Args()
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	sub := os.Args[1]
	switch sub {
	case "encode", "decode", "encode-image", "decode-image", "probe":
	default:
		usage()
		os.Exit(1)
	}
	o, args := parseOptions(sub, os.Args[2:])

	ctx, cancel := internal.SignalContext()
	defer cancel()

	var err error
	switch sub {
	case "encode":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = internal.Encode(ctx, os.Stdout, args[0], args[1], o)
	case "decode":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = internal.Decode(ctx, os.Stdout, args[0], args[1], o)
	case "encode-image":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = internal.EncodeImage(args[0], args[1])
	case "decode-image":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = internal.DecodeImage(args[0], args[1])
	case "probe":
		if len(args) != 1 {
			usage()
			os.Exit(1)
		}
		err = internal.Probe(ctx, os.Stdout, args[0], o)
	}
	if err != nil {
		log.Fatal(err)
	}
}

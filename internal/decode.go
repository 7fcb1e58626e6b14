package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/framefile/framefile/common"
)

// DecodeStream reads fixed-size frames from r and writes their payloads to w
// in arrival order. A read shorter than a full frame is the normal end of the
// stream, not an error: the final frame of a stream is exactly full, so no
// partial frame is ever expected from a well-formed video.
//
// Decode is single-threaded; the protocol depends on strictly sequential
// frame order, so there is nothing to parallelize.
func DecodeStream(ctx context.Context, w io.Writer, r io.Reader, o Options, prog *Progress) error {
	if err := o.Validate(); err != nil {
		return err
	}
	geo := Geometry{Width: o.Width, Height: o.Height}
	frame := make([]byte, geo.FrameSize())
	var expected uint64
	warned := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := io.ReadFull(r, frame)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			if n > 0 {
				log.Printf("[WARN] discarding %d trailing bytes, not a full frame", n)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading frame %w", err)
		}
		index, payload, err := DecodeFrame(frame)
		if err != nil {
			return err
		}
		if index != expected && !warned {
			// Best-effort recovery: arrival order wins over the declared
			// index, warn once and keep going.
			log.Printf("[WARN] frame index %d does not match arrival order %d", index, expected)
			warned = true
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("writing payload %w", err)
		}
		prog.AddConsumed()
		prog.AddPayloadBytes(len(payload))
		expected++
	}
}

// Decode restores the original file at outPath from the video at inPath using
// the external codec process. The final pipeline counters go to w as JSON.
func Decode(ctx context.Context, w io.Writer, inPath, outPath string, o Options) error {
	if _, err := os.Stat(inPath); err != nil {
		return fmt.Errorf("stat input video %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file %w", err)
	}
	defer out.Close()

	ff, err := StartDecoder(ctx, o, inPath)
	if err != nil {
		return err
	}
	defer ff.Close()

	log.Printf("[INFO] decoding %s to %s", inPath, outPath)
	prog := &Progress{}
	if err := DecodeStream(ctx, out, ff.Stdout, o, prog); err != nil {
		return err
	}
	if err := ff.Wait(); err != nil {
		return err
	}
	log.Printf("[INFO] file restored: %s, size: %d bytes from %d frames", outPath, prog.PayloadBytes(), prog.Consumed())
	jp := &common.JsonPrinter{W: w, Indent: o.Indent}
	prog.PrintSummary(jp, o.ShowSummary)
	return jp.Error()
}

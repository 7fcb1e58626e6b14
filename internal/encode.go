package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/framefile/framefile/common"
)

// EncodeStream slices src into framed buffers and writes them to w as a
// sequence of full-size frames. The producer (read and frame) and consumer
// (write to w) run concurrently; the bounded queue between them is the only
// shared state and caps memory regardless of source size. At least one frame
// is always emitted, so an empty source still round-trips.
//
// The calling goroutine reports progress until both stages are done.
func EncodeStream(ctx context.Context, w io.Writer, src io.Reader, o Options, prog *Progress) error {
	if err := o.Validate(); err != nil {
		return err
	}
	geo := Geometry{Width: o.Width, Height: o.Height}
	queue := NewQueue[[]byte](o.QueueFrames)

	var writeErr error
	done := make(chan struct{})
	go func() {
		// Consumer: pop frames and write them to the external codec in
		// strict FIFO order.
		defer close(done)
		for {
			frame, ok := queue.Pop()
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				writeErr = fmt.Errorf("writing frame %w", err)
				// Unblock the producer; already-read bytes are abandoned.
				queue.Close()
				return
			}
			prog.AddConsumed()
		}
	}()

	var readErr error
	prodDone := make(chan struct{})
	go func() {
		// Producer: read payload-sized chunks and frame them.
		defer close(prodDone)
		defer queue.Close()
		capacity := geo.PayloadCapacity()
		var index uint64
		for {
			select {
			case <-ctx.Done():
				readErr = ctx.Err()
				return
			default:
			}
			chunk := make([]byte, capacity)
			n, err := io.ReadFull(src, chunk)
			if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				readErr = fmt.Errorf("reading source %w", err)
				return
			}
			if n == 0 && index > 0 {
				return
			}
			frame := make([]byte, geo.FrameSize())
			if err := EncodeFrame(frame, index, chunk[:n]); err != nil {
				readErr = err
				return
			}
			if !queue.Push(frame) {
				return
			}
			prog.AddProduced()
			prog.AddPayloadBytes(n)
			index++
			if n < capacity {
				// ReadFull only comes up short at end of stream.
				return
			}
		}
	}()

	var tick <-chan time.Time
	if o.ProgressInterval > 0 {
		ticker := time.NewTicker(o.ProgressInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	waitDone, waitProd := done, prodDone
	for waitDone != nil || waitProd != nil {
		select {
		case <-waitDone:
			waitDone = nil
		case <-waitProd:
			waitProd = nil
		case <-tick:
			log.Printf("[INFO] produced %d frames, written %d", prog.Produced(), prog.Consumed())
		}
	}
	if readErr != nil {
		return readErr
	}
	return writeErr
}

// Encode packs the file at inPath into a lossless video at outPath using the
// external codec process. The final pipeline counters go to w as JSON.
func Encode(ctx context.Context, w io.Writer, inPath, outPath string, o Options) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input file %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat input file %w", err)
	}

	ff, err := StartEncoder(ctx, o, outPath)
	if err != nil {
		return err
	}
	defer ff.Close()

	log.Printf("[INFO] encoding %s (%d bytes) to %s", inPath, info.Size(), outPath)
	prog := &Progress{}
	if err := EncodeStream(ctx, ff.Stdin, in, o, prog); err != nil {
		return err
	}
	if err := ff.CloseInput(); err != nil {
		return fmt.Errorf("closing encoder input %w", err)
	}
	if err := ff.Wait(); err != nil {
		return err
	}
	log.Printf("[INFO] video saved: %s, total frames: %d", outPath, prog.Consumed())
	jp := &common.JsonPrinter{W: w, Indent: o.Indent}
	prog.PrintSummary(jp, o.ShowSummary)
	return jp.Error()
}

package internal

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	o := CreateDefaultOptions()
	o.Width = 16
	o.Height = 16
	o.QueueFrames = 4
	o.ProgressInterval = 0
	return o
}

func TestEncodeDecodeStreamRoundTrip(t *testing.T) {
	o := testOptions()
	geo := Geometry{Width: o.Width, Height: o.Height}
	capacity := geo.PayloadCapacity()

	cases := []struct {
		name       string
		sourceSize int
		wantFrames int
	}{
		{"empty_file", 0, 1},
		{"one_byte", 1, 1},
		{"exactly_one_payload", capacity, 1},
		{"three_and_a_half_payloads", capacity*3 + capacity/2, 4},
		{"many_frames", capacity*20 + 13, 21},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			source := make([]byte, c.sourceSize)
			_, err := rand.New(rand.NewSource(int64(c.sourceSize))).Read(source)
			require.NoError(t, err)

			var video bytes.Buffer
			prog := &Progress{}
			err = EncodeStream(context.Background(), &video, bytes.NewReader(source), o, prog)
			require.NoError(t, err)

			// every frame written has exactly the raster size
			require.Equal(t, 0, video.Len()%geo.FrameSize())
			assert.Equal(t, c.wantFrames, video.Len()/geo.FrameSize())
			assert.Equal(t, uint64(c.wantFrames), prog.Produced())
			assert.Equal(t, uint64(c.wantFrames), prog.Consumed())
			assert.Equal(t, uint64(c.sourceSize), prog.PayloadBytes())

			var restored bytes.Buffer
			decodeProg := &Progress{}
			err = DecodeStream(context.Background(), &restored, bytes.NewReader(video.Bytes()), o, decodeProg)
			require.NoError(t, err)
			require.Equal(t, source, restored.Bytes(), "round trip must be bit exact")
			assert.Equal(t, uint64(c.sourceSize), decodeProg.PayloadBytes())
		})
	}
}

type failingWriter struct {
	allowed int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.allowed <= 0 {
		return 0, errors.New("sink gone")
	}
	w.allowed--
	return len(p), nil
}

func TestEncodeStreamConsumerFailureStopsProducer(t *testing.T) {
	o := testOptions()
	geo := Geometry{Width: o.Width, Height: o.Height}
	source := make([]byte, geo.PayloadCapacity()*100)

	// The consumer fails on the second frame; the producer must stop cleanly
	// instead of deadlocking on a full queue.
	err := EncodeStream(context.Background(), &failingWriter{allowed: 1}, bytes.NewReader(source), o, &Progress{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing frame")
}

func TestEncodeStreamCancelledContext(t *testing.T) {
	o := testOptions()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := make([]byte, Geometry{Width: o.Width, Height: o.Height}.PayloadCapacity()*10)
	err := EncodeStream(ctx, &bytes.Buffer{}, bytes.NewReader(source), o, &Progress{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeStreamIgnoresTrailingPartialFrame(t *testing.T) {
	o := testOptions()
	geo := Geometry{Width: o.Width, Height: o.Height}
	source := []byte("some file content that fits in one frame")

	var video bytes.Buffer
	require.NoError(t, EncodeStream(context.Background(), &video, bytes.NewReader(source), o, &Progress{}))
	// Truncated tail, e.g. from an interrupted codec run.
	video.Write(make([]byte, geo.FrameSize()/3))

	var restored bytes.Buffer
	err := DecodeStream(context.Background(), &restored, bytes.NewReader(video.Bytes()), o, &Progress{})
	require.NoError(t, err, "a short read is normal end of stream")
	assert.Equal(t, source, restored.Bytes())
}

func TestDecodeStreamEmptyInput(t *testing.T) {
	o := testOptions()
	var restored bytes.Buffer
	err := DecodeStream(context.Background(), &restored, bytes.NewReader(nil), o, &Progress{})
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"lossy_codec", func(o *Options) { o.Codec = "libx264" }, true},
		{"zero_fps", func(o *Options) { o.FrameRate = 0 }, true},
		{"zero_queue", func(o *Options) { o.QueueFrames = 0 }, true},
		{"bad_geometry", func(o *Options) { o.Width = 0 }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := CreateDefaultOptions()
			c.mutate(&o)
			err := o.Validate()
			if c.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

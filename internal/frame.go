package internal

import (
	"encoding/binary"
	"fmt"

	"github.com/framefile/framefile/common"
)

// Geometry is the fixed frame raster. Encode and decode invocations of the
// same video must agree on it, since the wire carries no geometry metadata.
type Geometry struct {
	Width  int
	Height int
}

// FrameSize returns the byte length of one rgb24 frame.
func (g Geometry) FrameSize() int {
	return common.FrameSize(g.Width, g.Height)
}

// PayloadCapacity returns the number of source bytes one frame can carry.
func (g Geometry) PayloadCapacity() int {
	return g.FrameSize() - common.HeaderSize
}

func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("invalid frame geometry %dx%d", g.Width, g.Height)
	}
	if g.PayloadCapacity() <= 0 {
		return fmt.Errorf("frame geometry %dx%d leaves no room for payload", g.Width, g.Height)
	}
	return nil
}

// EncodeFrame fills dst with a complete frame: a 16-byte header (little-endian
// frame index and payload length), the payload, and pseudo-random filler for
// the unused remainder. dst must be a full frame buffer.
func EncodeFrame(dst []byte, index uint64, payload []byte) error {
	if len(dst) < common.HeaderSize {
		return fmt.Errorf("frame buffer of %d bytes is smaller than the %d byte header", len(dst), common.HeaderSize)
	}
	if len(payload) > len(dst)-common.HeaderSize {
		return fmt.Errorf("payload of %d bytes exceeds frame capacity %d", len(payload), len(dst)-common.HeaderSize)
	}
	binary.LittleEndian.PutUint64(dst[0:8], index)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(len(payload)))
	copy(dst[common.HeaderSize:], payload)
	fillNoise(dst[common.HeaderSize+len(payload):], index)
	return nil
}

// DecodeFrame extracts the frame index and payload from a full frame buffer.
// A declared payload length beyond the frame capacity is clamped rather than
// rejected, so a damaged or foreign stream can never drive a read past the
// buffer. The returned payload aliases frame.
func DecodeFrame(frame []byte) (index uint64, payload []byte, err error) {
	if len(frame) < common.HeaderSize {
		return 0, nil, fmt.Errorf("frame of %d bytes is smaller than the %d byte header", len(frame), common.HeaderSize)
	}
	index = binary.LittleEndian.Uint64(frame[0:8])
	length := binary.LittleEndian.Uint64(frame[8:16])
	if max := uint64(len(frame) - common.HeaderSize); length > max {
		length = max
	}
	return index, frame[common.HeaderSize : common.HeaderSize+length], nil
}

// fillNoise fills b with deterministic pseudo-random bytes. Flat padding
// compresses into large uniform blocks that video platforms are prone to
// flag or recompress, so unused frame space is filled with noise instead.
func fillNoise(b []byte, seed uint64) {
	x := seed*6364136223846793005 + 1442695040888963407
	for i := range b {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		b[i] = byte(x)
	}
}

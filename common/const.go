package common

const (
	// PixelBytes is the number of bytes per pixel (rgb24).
	PixelBytes = 3
	// HeaderSize is the number of bytes reserved at the start of each frame
	// for the frame index and payload length.
	HeaderSize = 16

	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultFrameRate = 30
	// DefaultQueueFrames bounds the number of in-flight frames between the
	// file reader and the encoder pipe, capping memory for any input size.
	DefaultQueueFrames = 64

	// CodecFFV1 is the default lossless codec. Needs an MKV or AVI container.
	CodecFFV1 = "ffv1"
	// CodecH264RGB is lossless H.264 (qp 0), usable in MP4 and MPEG-TS
	// containers that upload platforms accept.
	CodecH264RGB = "libx264rgb"

	// TSPacketSize is the size of one MPEG-TS transport packet.
	TSPacketSize = 188
)

// FrameSize returns the byte length of one rgb24 frame.
func FrameSize(width, height int) int {
	return width * height * PixelBytes
}

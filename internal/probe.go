package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Comcast/gots/v2/packet"
	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/asticode/go-astits"
	slices "golang.org/x/exp/slices"

	"github.com/framefile/framefile/common"
)

// Container kinds this tool can probe.
const (
	ContainerMP4 = "mp4"
	ContainerTS  = "ts"
)

var (
	mp4Extensions = []string{".mp4", ".mov", ".m4v"}
	tsExtensions  = []string{".ts", ".m2ts"}
)

// ContainerKind guesses the container format from the file extension.
func ContainerKind(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(mp4Extensions, ext):
		return ContainerMP4, nil
	case slices.Contains(tsExtensions, ext):
		return ContainerTS, nil
	}
	return "", fmt.Errorf("unknown container extension %q", ext)
}

type ElementaryStreamInfo struct {
	PID   uint16 `json:"pid"`
	Codec string `json:"codec"`
	Type  string `json:"type"`
}

type TrackInfo struct {
	TrackID     uint32  `json:"trackId"`
	Handler     string  `json:"handler"`
	TimeScale   uint32  `json:"timeScale"`
	SampleCount uint32  `json:"sampleCount"`
	DurationSec float64 `json:"durationSec"`
}

type TSPacketStats struct {
	TotalPackets     uint32 `json:"totalPackets"`
	PATPackets       uint32 `json:"patPackets"`
	PacketsBeforePAT uint32 `json:"packetsBeforePAT"`
}

// Probe prints information about a produced video container: the tracks or
// elementary streams found, and for TS also transport packet accounting.
// The sample count of the video track is the frame count of the stored file.
func Probe(ctx context.Context, w io.Writer, path string, o Options) error {
	kind, err := ContainerKind(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening video file %w", err)
	}
	defer f.Close()

	jp := &common.JsonPrinter{W: w, Indent: o.Indent}
	switch kind {
	case ContainerMP4:
		err = probeMP4(jp, f)
	default:
		err = probeTS(ctx, jp, f)
		if err == nil {
			if _, err = f.Seek(0, io.SeekStart); err == nil {
				err = probeTSPackets(jp, f)
			}
		}
	}
	if err != nil {
		return err
	}
	return jp.Error()
}

func probeMP4(jp *common.JsonPrinter, f io.Reader) error {
	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return fmt.Errorf("decoding mp4 %w", err)
	}
	if mp4File.Moov == nil {
		return fmt.Errorf("no moov box found")
	}
	for _, trak := range mp4File.Moov.Traks {
		info := TrackInfo{}
		if trak.Tkhd != nil {
			info.TrackID = trak.Tkhd.TrackID
		}
		if trak.Mdia == nil {
			continue
		}
		if trak.Mdia.Hdlr != nil {
			info.Handler = trak.Mdia.Hdlr.HandlerType
		}
		if trak.Mdia.Mdhd != nil {
			info.TimeScale = trak.Mdia.Mdhd.Timescale
			if trak.Mdia.Mdhd.Timescale > 0 {
				info.DurationSec = float64(trak.Mdia.Mdhd.Duration) / float64(trak.Mdia.Mdhd.Timescale)
			}
		}
		if minf := trak.Mdia.Minf; minf != nil && minf.Stbl != nil && minf.Stbl.Stsz != nil {
			info.SampleCount = minf.Stbl.Stsz.SampleNumber
		}
		jp.Print(info, true)
	}
	return nil
}

func probeTS(ctx context.Context, jp *common.JsonPrinter, f io.Reader) error {
	rd := bufio.NewReaderSize(f, 1000*common.TSPacketSize)
	dmx := astits.NewDemuxer(ctx, rd)
dataLoop:
	for {
		select {
		case <-ctx.Done():
			break dataLoop
		default:
		}

		d, err := dmx.NextData()
		if err != nil {
			if err.Error() == "astits: no more packets" {
				break dataLoop
			}
			return fmt.Errorf("reading next data %w", err)
		}

		if d.PMT != nil {
			for _, es := range d.PMT.ElementaryStreams {
				jp.Print(parseAstitsElementaryStreamInfo(es), true)
			}
			break dataLoop
		}
	}
	return nil
}

func parseAstitsElementaryStreamInfo(es *astits.PMTElementaryStream) ElementaryStreamInfo {
	info := ElementaryStreamInfo{PID: es.ElementaryPID}
	switch es.StreamType {
	case astits.StreamTypeH264Video:
		info.Codec, info.Type = "AVC", "video"
	case astits.StreamTypeH265Video:
		info.Codec, info.Type = "HEVC", "video"
	case astits.StreamTypeAACAudio:
		info.Codec, info.Type = "AAC", "audio"
	default:
		info.Codec = fmt.Sprintf("type-0x%02x", uint8(es.StreamType))
		info.Type = "unknown"
	}
	return info
}

func probeTSPackets(jp *common.JsonPrinter, f io.Reader) error {
	stats, err := ReadTSPacketStats(f)
	if err != nil {
		return err
	}
	jp.Print(stats, true)
	return nil
}

// ReadTSPacketStats counts transport packets and locates the PAT.
func ReadTSPacketStats(f io.Reader) (TSPacketStats, error) {
	stats := TSPacketStats{}
	reader := bufio.NewReader(f)
	if _, err := packet.Sync(reader); err != nil {
		return stats, fmt.Errorf("syncing with reader %w", err)
	}

	var pkt packet.Packet
	foundPAT := false
	for {
		if _, err := io.ReadFull(reader, pkt[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return stats, fmt.Errorf("reading packet %w", err)
		}
		stats.TotalPackets++
		if packet.IsPat(&pkt) {
			foundPAT = true
			stats.PATPackets++
		}
		if !foundPAT {
			stats.PacketsBeforePAT++
		}
	}
	return stats, nil
}

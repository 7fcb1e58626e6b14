package internal

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerKind(t *testing.T) {
	cases := []struct {
		path    string
		kind    string
		wantErr bool
	}{
		{"out.mp4", ContainerMP4, false},
		{"out.MOV", ContainerMP4, false},
		{"out.m4v", ContainerMP4, false},
		{"out.ts", ContainerTS, false},
		{"out.m2ts", ContainerTS, false},
		{"out.mkv", "", true},
		{"out", "", true},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			kind, err := ContainerKind(c.path)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.kind, kind)
		})
	}
}

// tsPacket builds one 188-byte transport packet with the given PID and a
// payload-only adaptation field.
func tsPacket(pid uint16, pusi bool) []byte {
	pkt := make([]byte, 188)
	pkt[0] = 0x47
	pkt[1] = byte(pid >> 8 & 0x1f)
	if pusi {
		pkt[1] |= 0x40
	}
	pkt[2] = byte(pid)
	pkt[3] = 0x10
	return pkt
}

func TestReadTSPacketStats(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(tsPacket(0x100, false)) // media packet ahead of the PAT
	stream.Write(tsPacket(0, true))      // PAT
	stream.Write(tsPacket(0x100, true))
	stream.Write(tsPacket(0x100, false))
	stream.Write(tsPacket(0, true)) // PAT repeats

	stats, err := ReadTSPacketStats(&stream)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), stats.TotalPackets)
	assert.Equal(t, uint32(2), stats.PATPackets)
	assert.Equal(t, uint32(1), stats.PacketsBeforePAT)
}

func TestReadTSPacketStatsNoSync(t *testing.T) {
	garbage := bytes.Repeat([]byte{0x00, 0x11, 0x22}, 100)
	_, err := ReadTSPacketStats(bytes.NewReader(garbage))
	require.Error(t, err)
}

func TestProbeRejectsUnknownContainer(t *testing.T) {
	o := CreateDefaultOptions()
	err := Probe(context.Background(), &bytes.Buffer{}, "video.webm", o)
	require.Error(t, err)
}

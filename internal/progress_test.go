package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framefile/framefile/common"
)

func TestProgressReport(t *testing.T) {
	prog := &Progress{}
	for i := 0; i < 3; i++ {
		prog.AddProduced()
	}
	prog.AddConsumed()
	prog.AddConsumed()
	prog.AddPayloadBytes(100)

	r := prog.Report()
	assert.Equal(t, uint64(3), r.FramesProduced)
	assert.Equal(t, uint64(2), r.FramesWritten)
	assert.Equal(t, uint64(100), r.PayloadBytes)
}

func TestProgressPrintSummary(t *testing.T) {
	prog := &Progress{}
	prog.AddProduced()
	prog.AddConsumed()
	prog.AddPayloadBytes(42)

	var buf bytes.Buffer
	jp := &common.JsonPrinter{W: &buf}
	prog.PrintSummary(jp, true)
	require.NoError(t, jp.Error())
	assert.Equal(t, `{"framesProduced":1,"framesWritten":1,"payloadBytes":42}`+"\n", buf.String())
}

func TestProgressPrintSummaryHidden(t *testing.T) {
	var buf bytes.Buffer
	jp := &common.JsonPrinter{W: &buf}
	(&Progress{}).PrintSummary(jp, false)
	require.NoError(t, jp.Error())
	assert.Equal(t, 0, buf.Len())
}

package internal

import (
	"sync/atomic"

	"github.com/framefile/framefile/common"
)

// Progress tracks pipeline liveness. The counters only ever increase, so a
// reporting goroutine may read them at any cadence without extra
// synchronization.
type Progress struct {
	produced     atomic.Uint64
	consumed     atomic.Uint64
	payloadBytes atomic.Uint64
}

func (p *Progress) AddProduced()          { p.produced.Add(1) }
func (p *Progress) AddConsumed()          { p.consumed.Add(1) }
func (p *Progress) AddPayloadBytes(n int) { p.payloadBytes.Add(uint64(n)) }
func (p *Progress) Produced() uint64      { return p.produced.Load() }
func (p *Progress) Consumed() uint64      { return p.consumed.Load() }
func (p *Progress) PayloadBytes() uint64  { return p.payloadBytes.Load() }

type ProgressReport struct {
	FramesProduced uint64 `json:"framesProduced"`
	FramesWritten  uint64 `json:"framesWritten"`
	PayloadBytes   uint64 `json:"payloadBytes"`
}

func (p *Progress) Report() ProgressReport {
	return ProgressReport{
		FramesProduced: p.Produced(),
		FramesWritten:  p.Consumed(),
		PayloadBytes:   p.PayloadBytes(),
	}
}

// PrintSummary writes the final pipeline counters as one JSON line.
func (p *Progress) PrintSummary(jp *common.JsonPrinter, show bool) {
	jp.Print(p.Report(), show)
}

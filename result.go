package memento

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sweeplab/memento/matrix"
	"github.com/sweeplab/memento/value"
)

var codec = sonic.ConfigStd

// Point is one sample of a recorded metric series.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is an ordered sequence of samples for one metric.
type Series []Point

// MemoryUsage is reserved for memory accounting. No collector in this core
// fills it in yet.
type MemoryUsage struct {
	VirtualPeak  int64 `json:"virtual_peak"`
	HardwarePeak int64 `json:"hardware_peak"`
}

// Result is the durable record of one experiment invocation. The cache
// stores results marked WasCached=true; a run flips the flag to false on
// the results it computed itself, so callers can tell fresh work from
// replayed work.
type Result struct {
	Config    *matrix.Config    `json:"config"`
	Inner     value.Value       `json:"inner"`
	Metrics   map[string]Series `json:"metrics,omitempty"`
	StartTime time.Time         `json:"start_time"`
	Runtime   time.Duration     `json:"runtime"`
	CPUTime   *time.Duration    `json:"cpu_time,omitempty"`
	Memory    *MemoryUsage      `json:"memory,omitempty"`
	WasCached bool              `json:"was_cached"`
}

func encodeResult(r *Result) ([]byte, error) {
	blob, err := codec.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return blob, nil
}

func decodeResult(blob []byte) (*Result, error) {
	var r Result
	if err := codec.Unmarshal(blob, &r); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &r, nil
}

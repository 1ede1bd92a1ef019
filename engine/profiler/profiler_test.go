package profiler

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sink [][]byte

func TestMarkRecordsStages(t *testing.T) {
	var out bytes.Buffer
	logger := log.New(&out)
	logger.SetLevel(log.DebugLevel)
	p := NewProfiler(logger)

	for i := 0; i < 64; i++ {
		sink = append(sink, make([]byte, 16*1024))
	}
	time.Sleep(time.Millisecond)
	first := p.Mark("load")
	second := p.Mark("encode")

	assert.Equal(t, "load", first.Stage)
	assert.GreaterOrEqual(t, first.Elapsed, time.Millisecond)
	assert.GreaterOrEqual(t, first.AllocBytes, uint64(64*16*1024))
	assert.Equal(t, "encode", second.Stage)
	require.Len(t, p.Samples(), 2)
	assert.Contains(t, out.String(), "stage=load")

	total := p.Total()
	assert.Equal(t, first.Elapsed+second.Elapsed, total.Elapsed)
	assert.Equal(t, first.AllocBytes+second.AllocBytes, total.AllocBytes)

	p.Reset()
	assert.Empty(t, p.Samples())
	sink = nil
}

func TestNilLoggerDiscards(t *testing.T) {
	p := NewProfiler(nil)
	s := p.Mark("noop")
	assert.Equal(t, "noop", s.Stage)
}

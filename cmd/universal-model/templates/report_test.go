package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBenchReport(t *testing.T) {
	out := BenchReport(&Report{
		Store:     "bench",
		Generated: time.Now(),
		Iters:     10,
		Rows: []ReportRow{
			{Consumers: 10, Burst: 100, Avg: time.Millisecond, P99: 2 * time.Millisecond, Max: 3 * time.Millisecond, Deliveries: 1000, Rate: 1234.5},
		},
	})

	assert.Contains(t, out, "# Flush benchmark: bench")
	assert.Contains(t, out, "10 ticks per row")
	assert.Contains(t, out, "| case | avg | p99 | max | deliveries | ticks |")
	assert.Contains(t, out, "| 10 consumers * 100 writes | 1ms | 2ms | 3ms | 1,000 | 1,234/s |")
	assert.Equal(t, 3, strings.Count(out, "\n|"))
}

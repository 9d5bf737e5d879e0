package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestSummarizeEmptyInput(t *testing.T) {
	metrics := Summarize(nil)

	// Every field reports zero, never NaN.
	want := PerformanceMetrics{}
	if diff := cmp.Diff(want, metrics); diff != "" {
		t.Errorf("unexpected metrics (-want +got):\n%s", diff)
	}

	assert.False(t, math.IsNaN(metrics.WinRate))
	assert.False(t, math.IsNaN(metrics.SharpeRatio))
	assert.False(t, math.IsNaN(metrics.ProfitFactor))
}

func TestSummarize(t *testing.T) {
	pnls := []float64{2, -1, 3, -2, 4}
	metrics := Summarize(pnls)

	assert.Equal(t, metrics.TotalTrades, 5)
	assert.Equal(t, metrics.WinningTrades, 3)
	assert.Equal(t, metrics.LosingTrades, 2)
	assert.Equal(t, metrics.WinRate, float64(60))
	assert.Equal(t, metrics.TotalPNL, float64(6))
	assert.Equal(t, metrics.AveragePNL, 1.2)
	assert.Equal(t, metrics.AverageWin, float64(3))
	assert.Equal(t, metrics.AverageLoss, 1.5)
	assert.Equal(t, metrics.ProfitFactor, float64(2))
	assert.True(t, metrics.SharpeRatio > 0)
}

func TestSummarizeNoLosses(t *testing.T) {
	metrics := Summarize([]float64{1, 2, 3})

	assert.Equal(t, metrics.WinRate, float64(100))
	assert.Equal(t, metrics.AverageLoss, float64(0))
	// Unit divisor fallback keeps the profit factor finite.
	assert.Equal(t, metrics.ProfitFactor, float64(2))
	assert.Equal(t, metrics.MaxDrawdown, float64(0))
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name string
		pnls []float64
		want float64
	}{
		{
			name: "no values",
			pnls: nil,
			want: 0,
		},
		{
			name: "monotonic gains",
			pnls: []float64{1, 1, 1},
			want: 0,
		},
		{
			name: "peak to trough",
			pnls: []float64{5, -2, -3, 4},
			want: 5,
		},
		{
			name: "all losses",
			pnls: []float64{-1, -2},
			want: 3,
		},
	}

	for _, test := range tests {
		got := MaxDrawdown(test.pnls)
		if got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}

func TestSharpeRatio(t *testing.T) {
	// Zero deviation reports zero rather than dividing by zero.
	assert.Equal(t, SharpeRatio([]float64{2, 2, 2}), float64(0))
	assert.Equal(t, SharpeRatio(nil), float64(0))

	ratio := SharpeRatio([]float64{1, 2, 3})
	assert.True(t, ratio > 0)
	assert.False(t, math.IsNaN(ratio))
}

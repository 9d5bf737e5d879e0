package indicator

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestBollingerBands(t *testing.T) {
	// Short series collapses the bands onto the middle.
	short := BollingerBands([]float64{1.1, 1.2}, DefaultBollingerPeriod, DefaultBollingerStdDev)
	assert.Equal(t, short.Upper, short.Middle)
	assert.Equal(t, short.Lower, short.Middle)
	assert.Equal(t, short.Middle, 1.2)

	// A constant series has no deviation.
	flat := BollingerBands(constantPrices(1.085, 30), DefaultBollingerPeriod, DefaultBollingerStdDev)
	assert.Equal(t, flat.Upper, 1.085)
	assert.Equal(t, flat.Lower, 1.085)
	assert.Equal(t, flat.Bandwidth(), float64(0))

	// Band ordering holds for non degenerate input.
	mixed := []float64{5, 3, 8, 2, 9, 4, 7, 1, 6, 5, 8, 3, 9, 2, 7, 4, 6, 8, 1, 5, 7, 3}
	bands := BollingerBands(mixed, DefaultBollingerPeriod, DefaultBollingerStdDev)
	assert.True(t, bands.Lower < bands.Middle)
	assert.True(t, bands.Middle < bands.Upper)
	assert.True(t, bands.Bandwidth() > 0)
}

func TestBollingerOrdering(t *testing.T) {
	series := [][]float64{
		risingPrices(1, 0.01, 40),
		fallingPrices(100, 0.5, 40),
		constantPrices(50, 40),
	}

	for idx := range series {
		bands := BollingerBands(series[idx], DefaultBollingerPeriod, DefaultBollingerStdDev)
		assert.True(t, bands.Lower <= bands.Middle)
		assert.True(t, bands.Middle <= bands.Upper)
	}
}

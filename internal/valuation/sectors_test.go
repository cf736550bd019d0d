package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorTable_ResolveByLabel(t *testing.T) {
	table := DefaultSectorTable(0.06)

	tests := []struct {
		name         string
		sector       string
		wantRate     float64
		wantResolved string
	}{
		{name: "telecom is the slowest", sector: "TELECOM", wantRate: 0.02, wantResolved: "TELECOM"},
		{name: "utilities", sector: "UTILITIES", wantRate: 0.03, wantResolved: "UTILITIES"},
		{name: "retail", sector: "RETAIL", wantRate: 0.03, wantResolved: "RETAIL"},
		{name: "financials", sector: "FINANCIALS", wantRate: 0.04, wantResolved: "FINANCIALS"},
		{name: "consumer", sector: "CONSUMER", wantRate: 0.05, wantResolved: "CONSUMER"},
		{name: "industrials", sector: "INDUSTRIALS", wantRate: 0.05, wantResolved: "INDUSTRIALS"},
		{name: "healthcare", sector: "HEALTHCARE", wantRate: 0.06, wantResolved: "HEALTHCARE"},
		{name: "large cap tech", sector: "TECH_LARGE", wantRate: 0.08, wantResolved: "TECH_LARGE"},
		{name: "growth tech", sector: "TECH_GROWTH", wantRate: 0.10, wantResolved: "TECH_GROWTH"},
		{name: "network processors are the fastest", sector: "NETWORK", wantRate: 0.12, wantResolved: "NETWORK"},
		{name: "case and whitespace normalized", sector: "  network ", wantRate: 0.12, wantResolved: "NETWORK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, resolved := table.Resolve(tt.sector, "XYZ")
			assert.Equal(t, tt.wantRate, rate)
			assert.Equal(t, tt.wantResolved, resolved)
		})
	}
}

func TestSectorTable_ResolveByTickerAlias(t *testing.T) {
	table := DefaultSectorTable(0.06)

	rate, resolved := table.Resolve("", "V")
	assert.Equal(t, 0.12, rate)
	assert.Equal(t, "NETWORK", resolved)

	rate, resolved = table.Resolve("", "t")
	assert.Equal(t, 0.02, rate)
	assert.Equal(t, "TELECOM", resolved)
}

func TestSectorTable_LabelTakesPrecedenceOverAlias(t *testing.T) {
	table := DefaultSectorTable(0.06)

	// Ticker V is a network alias, but an explicit sector label wins.
	rate, resolved := table.Resolve("TELECOM", "V")
	assert.Equal(t, 0.02, rate)
	assert.Equal(t, "TELECOM", resolved)
}

func TestSectorTable_UnknownFallsBackToDefault(t *testing.T) {
	table := DefaultSectorTable(0.06)

	rate, resolved := table.Resolve("SPACE_MINING", "ZZZZ")
	assert.Equal(t, 0.06, rate)
	assert.Equal(t, SectorUnknown, resolved)

	rate, resolved = table.Resolve("", "")
	assert.Equal(t, 0.06, rate)
	assert.Equal(t, SectorUnknown, resolved)
}

func TestSectorTable_RatesAreFractionsBelowOne(t *testing.T) {
	table := DefaultSectorTable(0.06)

	for sector, rate := range table.Sectors() {
		assert.Greater(t, rate, 0.0, sector)
		assert.Less(t, rate, 1.0, sector)
	}
}

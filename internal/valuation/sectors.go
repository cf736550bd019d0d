package valuation

import "strings"

// SectorUnknown is the resolved sector label when neither the sector
// string nor the ticker matches the table.
const SectorUnknown = "UNKNOWN"

// SectorTable maps sector labels to long-run cash-flow growth
// assumptions. It is built once at startup and read-only afterwards,
// safe for concurrent use. Adding a sector or adjusting a rate is a
// data change here, not a control-flow change.
type SectorTable struct {
	rates       map[string]float64
	aliases     map[string]string // ticker -> sector label
	defaultRate float64
}

// NewSectorTable builds a table from explicit rate and alias maps.
// Keys are normalized to upper case.
func NewSectorTable(rates map[string]float64, aliases map[string]string, defaultRate float64) *SectorTable {
	t := &SectorTable{
		rates:       make(map[string]float64, len(rates)),
		aliases:     make(map[string]string, len(aliases)),
		defaultRate: defaultRate,
	}
	for k, v := range rates {
		t.rates[normalizeLabel(k)] = v
	}
	for k, v := range aliases {
		t.aliases[normalizeLabel(k)] = normalizeLabel(v)
	}
	return t
}

// DefaultSectorTable returns the built-in sector growth assumptions.
// Rates are conservative long-run estimates: mature regulated
// industries at the bottom, network/payment processors at the top.
func DefaultSectorTable(defaultRate float64) *SectorTable {
	rates := map[string]float64{
		"TELECOM":      0.02,
		"UTILITIES":    0.03,
		"RETAIL":       0.03,
		"MEDIA":        0.04,
		"FINANCIALS":   0.04,
		"CONSUMER":     0.05,
		"INDUSTRIALS":  0.05,
		"HEALTHCARE":   0.06,
		"TECH_LARGE":   0.08,
		"TECH_GROWTH":  0.10,
		"FINTECH":      0.10,
		"SOCIAL_MEDIA": 0.10,
		"NETWORK":      0.12,
	}
	aliases := map[string]string{
		"T": "TELECOM", "VZ": "TELECOM", "VOX": "TELECOM",
		"NEE": "UTILITIES", "DUK": "UTILITIES", "SO": "UTILITIES",
		"HD": "RETAIL", "SBUX": "RETAIL",
		"DIS": "MEDIA", "NFLX": "MEDIA",
		"JPM": "FINANCIALS", "BAC": "FINANCIALS", "GS": "FINANCIALS",
		"PG": "CONSUMER", "KO": "CONSUMER", "PEP": "CONSUMER", "WMT": "CONSUMER", "MCD": "CONSUMER",
		"BA": "INDUSTRIALS", "IBM": "INDUSTRIALS",
		"JNJ": "HEALTHCARE", "UNH": "HEALTHCARE", "ABT": "HEALTHCARE",
		"AAPL": "TECH_LARGE", "MSFT": "TECH_LARGE", "GOOGL": "TECH_LARGE", "NVDA": "TECH_LARGE",
		"AMD": "TECH_GROWTH", "TSLA": "TECH_GROWTH",
		"PYPL": "FINTECH",
		"META": "SOCIAL_MEDIA",
		"V": "NETWORK", "MA": "NETWORK",
	}
	return NewSectorTable(rates, aliases, defaultRate)
}

// Resolve returns the growth rate and resolved sector label for a
// company. Lookup order: exact sector label match, then ticker alias,
// then the default rate under SectorUnknown. Pure lookup, no failure
// path.
func (t *SectorTable) Resolve(sector, ticker string) (float64, string) {
	if label := normalizeLabel(sector); label != "" {
		if rate, ok := t.rates[label]; ok {
			return rate, label
		}
	}
	if label, ok := t.aliases[normalizeLabel(ticker)]; ok {
		return t.rates[label], label
	}
	return t.defaultRate, SectorUnknown
}

// DefaultRate returns the fallback growth rate.
func (t *SectorTable) DefaultRate() float64 {
	return t.defaultRate
}

// Sectors returns the known sector labels. Used by handlers to expose
// the table for inspection.
func (t *SectorTable) Sectors() map[string]float64 {
	out := make(map[string]float64, len(t.rates))
	for k, v := range t.rates {
		out[k] = v
	}
	return out
}

func normalizeLabel(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

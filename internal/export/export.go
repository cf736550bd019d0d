// Package export renders ranked screen results as CSV and as a
// console table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/mkaravas/valuescreen/internal/domain"
)

// csvHeader is the fixed export column order. Consumers diff exports
// across runs, so the order never changes.
var csvHeader = []string{
	"ticker",
	"price",
	"intrinsic_value",
	"mos_value",
	"discount_percent",
	"upside_percent",
	"sector",
	"quality_tier",
	"growth_rate",
	"roe",
	"roic",
	"fcf_yield",
	"rating",
	"signal",
	"score",
}

// WriteCSV writes ranked results to w in the fixed column order.
func WriteCSV(w io.Writer, results []domain.ValuationResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, res := range results {
		record := []string{
			res.Ticker,
			formatFloat(res.Price),
			formatFloat(res.IntrinsicValue),
			formatFloat(res.MOSValue),
			formatFloat(res.DiscountPercent),
			formatFloat(res.UpsidePercent),
			res.Sector,
			string(res.QualityTier),
			formatFloat(res.GrowthRate),
			formatFloat(res.ROE),
			formatFloat(res.ROIC),
			formatFloat(res.FCFYield),
			string(res.Rating),
			string(res.Signal),
			formatFloat(res.Score),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", res.Ticker, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteTable writes a fixed-width console table of the top results.
// topN <= 0 prints everything.
func WriteTable(w io.Writer, results []domain.ValuationResult, topN int) error {
	if topN <= 0 || topN > len(results) {
		topN = len(results)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTICKER\tPRICE\tVALUE\tDISCOUNT\tTIER\tRATING\tSIGNAL\tSCORE")

	for i, res := range results[:topN] {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.1f%%\t%s\t%s\t%s\t%.1f\n",
			i+1, res.Ticker, res.Price, res.IntrinsicValue, res.DiscountPercent,
			res.QualityTier, res.Rating, res.Signal, res.Score)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// formatFloat renders with the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package events

// ScreenStartedData contains data for ScreenStarted events
type ScreenStartedData struct {
	RunID   string `json:"run_id"`
	Tickers int    `json:"tickers"`
}

// TickerAnalyzedData contains data for TickerAnalyzed events
type TickerAnalyzedData struct {
	RunID  string  `json:"run_id"`
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
	Signal string  `json:"signal"`
}

// TickerSkippedData contains data for TickerSkipped events
type TickerSkippedData struct {
	RunID  string `json:"run_id"`
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// ScreenCompletedData contains data for ScreenCompleted events
type ScreenCompletedData struct {
	RunID    string  `json:"run_id"`
	Analyzed int     `json:"analyzed"`
	Skipped  int     `json:"skipped"`
	TopScore float64 `json:"top_score"`
}

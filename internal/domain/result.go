package domain

// Result is the record a scenario run hands back to its caller
type Result struct {
	Result string   `json:"result"`
	Logs   []string `json:"logs"`
	Events []string `json:"events"`
}

// BatchSummary aggregates many independent runs of one scenario
type BatchSummary struct {
	Scenario     string             `json:"scenario"`
	Runs         int                `json:"runs"`
	BaseSeed     int64              `json:"base_seed"`
	Outcomes     map[string]int     `json:"outcomes"`
	OutcomeRates map[string]float64 `json:"outcome_rates"`
	AlertedRuns  int                `json:"alerted_runs"`
	TotalEvents  int                `json:"total_events"`
	MeanTicks    float64            `json:"mean_ticks"`
	MaxTicks     int                `json:"max_ticks"`
}

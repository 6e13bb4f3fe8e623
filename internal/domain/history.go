package domain

// HistorySummary holds the readings shown in the history panel.
type HistorySummary struct {
	Current Reading `json:"current"`
	Max     Reading `json:"max"`
	Min     Reading `json:"min"`
}

// SummarizeHistory finds the highest and lowest readings. Ties resolve to the
// first match, which is the most recent reading since history is ordered
// newest first. An empty history yields a zero summary.
func SummarizeHistory(history []Reading) HistorySummary {
	if len(history) == 0 {
		return HistorySummary{}
	}

	maxIdx, minIdx := 0, 0
	for i, r := range history {
		if r.PPM > history[maxIdx].PPM {
			maxIdx = i
		}
		if r.PPM < history[minIdx].PPM {
			minIdx = i
		}
	}

	return HistorySummary{
		Current: history[0],
		Max:     history[maxIdx],
		Min:     history[minIdx],
	}
}

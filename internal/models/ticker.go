package models

// MatchQuality grades how directly a query resolved to a ticker.
type MatchQuality string

const (
	// MatchHigh means the query was itself the ticker symbol.
	MatchHigh MatchQuality = "high"
	// MatchMedium means the ticker was chosen from search candidates.
	MatchMedium MatchQuality = "medium"
)

// TickerMatch is the result of resolving a free-text query.
type TickerMatch struct {
	Ticker       string       `json:"ticker"`
	Name         string       `json:"name"`
	Exchange     string       `json:"exchange"`
	Sector       string       `json:"sector"`
	Industry     string       `json:"industry"`
	MatchQuality MatchQuality `json:"match_quality"`
}

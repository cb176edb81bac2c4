package domain

// PriceSnapshot is a periodic observation of a launch pool's market state.
// Snapshots carry no uniqueness key; the series is reconstructed purely by
// reading rows in creation order. TokensSold and SolCollected are the pool's
// cumulative counters at observation time, not per-interval deltas.
type PriceSnapshot struct {
	TokenAddress  string `json:"token_address"`
	PriceLamports int64  `json:"price_lamports"`
	TokensSold    int64  `json:"tokens_sold"`   // cumulative
	SolCollected  int64  `json:"sol_collected"` // cumulative, lamports
	CreatedAt     int64  `json:"created_at"`    // insertion timestamp (ms)
}

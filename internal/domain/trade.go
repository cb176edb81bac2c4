package domain

// TradeSide identifies the direction of a trade.
type TradeSide string

const (
	// TradeSideBuy is a purchase of launch tokens for SOL.
	TradeSideBuy TradeSide = "buy"
	// TradeSideSell is a sale of launch tokens back to SOL.
	TradeSideSell TradeSide = "sell"
)

// Valid reports whether the side is one of the known values.
func (s TradeSide) Valid() bool {
	return s == TradeSideBuy || s == TradeSideSell
}

// Trade is a single executed transaction on a launch token market.
// TxSig is the idempotency key: the ledger stores at most one row per
// transaction signature, and re-submitting the same signature is a no-op.
type Trade struct {
	ID            int64     `json:"id"`             // assigned by storage
	TokenAddress  string    `json:"token_address"`  // market identifier (mint address)
	TxSig         string    `json:"tx_sig"`         // globally unique transaction signature
	Wallet        string    `json:"wallet"`         // acting wallet, base58
	Side          TradeSide `json:"trade_type"`     // buy | sell
	SolAmount     int64     `json:"sol_amount"`     // lamports
	TokenAmount   int64     `json:"token_amount"`   // base token units
	PriceLamports int64     `json:"price_lamports"` // price per token in lamports
	CreatedAt     int64     `json:"created_at"`     // insertion timestamp (ms)
}

// TradeWithProfile is a trade joined with the trading wallet's display
// profile. Username and AvatarURL are nil when no profile exists.
type TradeWithProfile struct {
	Trade
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

package domain

// Profile is a wallet's display profile. Profiles only enrich trade and chat
// listings; nothing in the ledger depends on one existing.
type Profile struct {
	Wallet    string `json:"wallet"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	UpdatedAt int64  `json:"updated_at"` // ms
}

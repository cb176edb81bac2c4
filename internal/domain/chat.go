package domain

// ChatMessage is one entry in a token's chat stream.
type ChatMessage struct {
	ID           string `json:"id"` // uuid
	TokenAddress string `json:"token_address"`
	Wallet       string `json:"wallet"`
	Body         string `json:"body"`
	CreatedAt    int64  `json:"created_at"` // ms
}

// ChatMessageWithProfile is a chat message joined with the sender's display
// profile. Username and AvatarURL are nil when no profile exists.
type ChatMessageWithProfile struct {
	ChatMessage
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

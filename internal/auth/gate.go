package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sames-backend/internal/observability"
)

// Request headers carrying the detached signature and the signed message.
const (
	HeaderSignature = "x-wallet-signature"
	HeaderMessage   = "x-wallet-message"
)

// Rejection reasons, used as metric labels.
const (
	rejectMissingHeaders   = "missing_headers"
	rejectMissingWallet    = "missing_wallet"
	rejectWalletNotInMsg   = "wallet_not_in_message"
	rejectInvalidSignature = "invalid_signature"
)

// VerifyFunc checks a detached signature. Production code uses Verify;
// tests substitute their own.
type VerifyFunc func(wallet, message, signature string) bool

// Gate authenticates mutating requests by wallet signature. When disabled
// it passes every request through untouched, so local development does not
// need a signing wallet.
type Gate struct {
	enabled bool
	verify  VerifyFunc
}

// NewGate creates a Gate backed by the Ed25519 verifier.
func NewGate(enabled bool) *Gate {
	return &Gate{enabled: enabled, verify: Verify}
}

// NewGateWithVerifier creates a Gate with a custom verify function.
func NewGateWithVerifier(enabled bool, verify VerifyFunc) *Gate {
	return &Gate{enabled: enabled, verify: verify}
}

// Middleware returns a gin handler enforcing the signature check. The
// acting wallet comes from the :wallet route parameter when present,
// otherwise from the "wallet" field of the JSON body. The signed message
// must contain the wallet address, which ties the signature to the signer
// and keeps one wallet's message from authorizing another's request.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.enabled {
			c.Next()
			return
		}

		signature := c.GetHeader(HeaderSignature)
		message := c.GetHeader(HeaderMessage)
		if signature == "" || message == "" {
			reject(c, rejectMissingHeaders, "signature headers required")
			return
		}

		wallet := c.Param("wallet")
		if wallet == "" {
			wallet = walletFromBody(c)
		}
		if wallet == "" {
			reject(c, rejectMissingWallet, "wallet not present in request")
			return
		}

		if !strings.Contains(message, wallet) {
			reject(c, rejectWalletNotInMsg, "message does not reference wallet")
			return
		}

		if !g.verify(wallet, message, signature) {
			reject(c, rejectInvalidSignature, "invalid signature")
			return
		}

		c.Next()
	}
}

func reject(c *gin.Context, reason, msg string) {
	observability.RecordAuthRejection(reason)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// walletFromBody peeks at the JSON body for a "wallet" field and restores
// the body so downstream handlers can bind it again.
func walletFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(data))

	var peek struct {
		Wallet string `json:"wallet"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return ""
	}
	return peek.Wallet
}

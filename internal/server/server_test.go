package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sames-backend/internal/auth"
	"sames-backend/internal/chat"
	"sames-backend/internal/domain"
	"sames-backend/internal/ledger"
	"sames-backend/internal/pricehistory"
	"sames-backend/internal/storage/memory"
)

type testEnv struct {
	router   *gin.Engine
	profiles *memory.ProfileStore
}

func newTestEnv(t *testing.T, gate *auth.Gate) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	trades := memory.NewTradeStore()
	snapshots := memory.NewSnapshotStore()
	profiles := memory.NewProfileStore()
	messages := memory.NewChatStore()
	hub := chat.NewHub()

	srv := New(
		ledger.NewService(trades, profiles),
		pricehistory.NewService(snapshots),
		chat.NewService(messages, profiles, hub),
		hub,
		profiles,
		gate,
	)

	return &testEnv{router: srv.Router(), profiles: profiles}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	w := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRecordTrade_OK(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	w := env.do(http.MethodPost, "/trade/T1",
		`{"tx_sig":"sigA","wallet":"W1","trade_type":"buy","sol_amount":1000000000,"token_amount":500,"price_lamports":2000000}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.NotContains(t, w.Body.String(), "duplicate")
}

func TestRecordTrade_WireFieldNames(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	// Clients send trade_type on the wire; reject nothing they are
	// documented to send, and echo the same name back on reads.
	w := env.do(http.MethodPost, "/trade/T1",
		`{"wallet":"W1","tx_sig":"sigA","trade_type":"buy","sol_amount":1000000000,"token_amount":500,"price_lamports":2000000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = env.do(http.MethodGet, "/trades/T1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"trade_type":"buy"`)
	assert.NotContains(t, w.Body.String(), `"side"`)
}

func TestRecordTrade_DuplicateFlag(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))
	body := `{"tx_sig":"sigA","wallet":"W1","trade_type":"buy","sol_amount":100}`

	w := env.do(http.MethodPost, "/trade/T1", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/trade/T1", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"duplicate":true`)

	w = env.do(http.MethodGet, "/trades/T1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var trades []domain.TradeWithProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	assert.Len(t, trades, 1)
}

func TestRecordTrade_MissingFields(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	cases := []struct {
		name string
		body string
	}{
		{"no tx_sig", `{"wallet":"W1","trade_type":"buy"}`},
		{"no wallet", `{"tx_sig":"s","trade_type":"buy"}`},
		{"bad trade type", `{"tx_sig":"s","wallet":"W1","trade_type":"hold"}`},
		{"negative amount", `{"tx_sig":"s","wallet":"W1","trade_type":"buy","sol_amount":-1}`},
		{"not json", `not json`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/trade/T1", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListTrades_OrderAndProfileJoin(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	w := env.do(http.MethodPost, "/profile", `{"wallet":"W1","username":"alice","avatar_url":"https://cdn/a.png"}`)
	require.Equal(t, http.StatusOK, w.Code)

	for i, wallet := range []string{"W1", "W2"} {
		w := env.do(http.MethodPost, "/trade/T1",
			fmt.Sprintf(`{"tx_sig":"sig%d","wallet":"%s","trade_type":"buy"}`, i, wallet))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = env.do(http.MethodGet, "/trades/T1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var trades []domain.TradeWithProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	require.Len(t, trades, 2)

	assert.Equal(t, "sig0", trades[0].TxSig)
	require.NotNil(t, trades[0].Username)
	assert.Equal(t, "alice", *trades[0].Username)
	assert.Nil(t, trades[1].Username)
}

func TestListTrades_LimitClamped(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	for i := 0; i < ledger.MaxListLimit+5; i++ {
		w := env.do(http.MethodPost, "/trade/T1",
			fmt.Sprintf(`{"tx_sig":"sig%d","wallet":"W1","trade_type":"sell"}`, i))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(http.MethodGet, "/trades/T1?limit=100000", "")
	require.Equal(t, http.StatusOK, w.Code)

	var trades []domain.TradeWithProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	assert.Len(t, trades, ledger.MaxListLimit)
}

func TestSnapshots_RecordAndList(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	for _, price := range []int64{100, 150, 120} {
		w := env.do(http.MethodPost, "/snapshot/T1",
			fmt.Sprintf(`{"wallet":"W1","price_lamports":%d,"tokens_sold":10,"sol_collected":1000}`, price))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(http.MethodGet, "/prices/T1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snaps []domain.PriceSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snaps))
	require.Len(t, snaps, 3)
	assert.Equal(t, int64(100), snaps[0].PriceLamports)
	assert.Equal(t, int64(150), snaps[1].PriceLamports)
	assert.Equal(t, int64(120), snaps[2].PriceLamports)
}

func TestChat_PostAndList(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	w := env.do(http.MethodPost, "/chat/T1", `{"wallet":"W1","body":"gm"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = env.do(http.MethodPost, "/chat/T1", `{"wallet":"W1","body":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/chat/T1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var msgs []domain.ChatMessageWithProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "gm", msgs[0].Body)
	assert.NotEmpty(t, msgs[0].ID)
}

func TestProfile_UpsertAndGet(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(false))

	w := env.do(http.MethodPost, "/profile", `{"wallet":"W1","username":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/profile/W1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	w = env.do(http.MethodGet, "/profile/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/profile", `{"username":"no-wallet"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// failingTradeStore simulates a dead backing store.
type failingTradeStore struct{}

func (failingTradeStore) Insert(context.Context, *domain.Trade) (bool, error) {
	return false, errors.New("connection pool exhausted")
}

func (failingTradeStore) ListByToken(context.Context, string, int) ([]*domain.Trade, error) {
	return nil, errors.New("connection pool exhausted")
}

func TestStorageErrorTextSurfaced(t *testing.T) {
	gin.SetMode(gin.TestMode)
	profiles := memory.NewProfileStore()
	hub := chat.NewHub()
	srv := New(
		ledger.NewService(failingTradeStore{}, profiles),
		pricehistory.NewService(memory.NewSnapshotStore()),
		chat.NewService(memory.NewChatStore(), profiles, hub),
		hub,
		profiles,
		auth.NewGate(false),
	)
	env := &testEnv{router: srv.Router(), profiles: profiles}

	w := env.do(http.MethodGet, "/trades/T1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection pool exhausted")
}

func TestAuthGate_EnabledRejectsUnsigned(t *testing.T) {
	env := newTestEnv(t, auth.NewGate(true))

	w := env.do(http.MethodPost, "/trade/T1", `{"tx_sig":"s","wallet":"W1","trade_type":"buy"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Reads stay open.
	w = env.do(http.MethodGet, "/trades/T1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthGate_MessageMustContainWallet(t *testing.T) {
	gate := auth.NewGateWithVerifier(true, func(_, _, _ string) bool { return true })
	env := newTestEnv(t, gate)

	req := httptest.NewRequest(http.MethodPost, "/trade/T1",
		strings.NewReader(`{"tx_sig":"s","wallet":"W1","trade_type":"buy"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderSignature, "sig")
	req.Header.Set(auth.HeaderMessage, "hello")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGate_SignedWritePasses(t *testing.T) {
	gate := auth.NewGateWithVerifier(true, func(_, _, _ string) bool { return true })
	env := newTestEnv(t, gate)

	req := httptest.NewRequest(http.MethodPost, "/trade/T1",
		strings.NewReader(`{"tx_sig":"s","wallet":"W1","trade_type":"buy"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderSignature, "sig")
	req.Header.Set(auth.HeaderMessage, "authorize trade for W1")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

package solbc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// rpcServer answers JSON-RPC calls with the result registered for the method.
func rpcServer(t *testing.T, results map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     interface{} `json:"id"`
			Method string      `json:"method"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := results[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "Method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetHealth(t *testing.T) {
	srv := rpcServer(t, map[string]interface{}{"getHealth": "ok"})
	c := NewClient(srv.URL, zaptest.NewLogger(t))
	assert.NoError(t, c.GetHealth(context.Background()))
}

func TestClient_GetHealth_Error(t *testing.T) {
	srv := rpcServer(t, map[string]interface{}{})
	c := NewClient(srv.URL, zaptest.NewLogger(t))
	assert.Error(t, c.GetHealth(context.Background()))
}

func TestClient_GetTokenAccountBalance(t *testing.T) {
	srv := rpcServer(t, map[string]interface{}{
		"getTokenAccountBalance": map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": map[string]interface{}{
				"amount":         "1912380209000",
				"decimals":       6,
				"uiAmount":       1912380.209,
				"uiAmountString": "1912380.209",
			},
		},
	})
	c := NewClient(srv.URL, zaptest.NewLogger(t))

	balance, err := c.GetTokenAccountBalance(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(1912380209000), balance)
}

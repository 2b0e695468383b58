package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerateAccount(t *testing.T) {
	a, err := GenerateAccount()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Address) != 58 {
		t.Errorf("expected 58-char address, got %d chars", len(a.Address))
	}
	if DeriveAddress(a.PublicKey) != a.Address {
		t.Error("address does not match public key derivation")
	}
}

func TestRestoreAccount_RoundTrip(t *testing.T) {
	a, err := GenerateAccount()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := RestoreAccount(a.PrivateKey.Seed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.Address != a.Address {
		t.Errorf("restored address %s != original %s", restored.Address, a.Address)
	}
}

func TestRestoreAccount_BadSeed(t *testing.T) {
	if _, err := RestoreAccount([]byte("short")); err == nil {
		t.Error("expected error for bad seed length")
	}
}

func TestSubmitRawTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/transactions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Algo-API-Token") != "secret" {
			t.Error("expected api token header")
		}
		json.NewEncoder(w).Encode(map[string]string{"txId": "TX123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	txID, err := c.SubmitRawTransaction(context.Background(), []byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txID != "TX123" {
		t.Errorf("expected TX123, got %s", txID)
	}
}

func TestWaitForConfirmation(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		resp := PendingTransaction{}
		if n >= 2 {
			resp.ConfirmedRound = 42
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(srv.URL, "")
	round, err := c.WaitForConfirmation(ctx, "TX123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if round != 42 {
		t.Errorf("expected round 42, got %d", round)
	}
}

func TestWaitForConfirmation_PoolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PendingTransaction{PoolError: "overspend"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.WaitForConfirmation(context.Background(), "TX"); err == nil {
		t.Error("expected error for pool rejection")
	}
}

func TestAccountInformation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/accounts/ADDR" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(AccountState{Address: "ADDR", Amount: 1000, Status: "Online"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	st, err := c.AccountInformation(context.Background(), "ADDR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Amount != 1000 {
		t.Errorf("expected amount 1000, got %d", st.Amount)
	}
}

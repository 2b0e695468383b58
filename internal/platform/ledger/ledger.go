// Package ledger wraps the Algorand node (algod) REST API with the four
// primitives the platform needs: account creation/restore, raw transaction
// submission, confirmation waiting, and account state reads. Transaction
// construction and signing belong to the caller's wallet; this package never
// inspects payloads. Ledger failures must never block a core flow, so every
// operation is context-bound and returns a plain error for the caller to log.
package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	checksumLen    = 4
	apiTokenHeader = "X-Algo-API-Token"
)

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Account is an ed25519 keypair with its derived Algorand address.
type Account struct {
	Address    string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// GenerateAccount creates a fresh keypair and derives its address.
func GenerateAccount() (*Account, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Account{Address: DeriveAddress(pub), PublicKey: pub, PrivateKey: priv}, nil
}

// RestoreAccount rebuilds an account from a 32-byte ed25519 seed.
func RestoreAccount(seed []byte) (*Account, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Account{Address: DeriveAddress(pub), PublicKey: pub, PrivateKey: priv}, nil
}

// DeriveAddress computes the base32 address for a public key: the key bytes
// followed by the last four bytes of their SHA-512/256 digest.
func DeriveAddress(pub ed25519.PublicKey) string {
	digest := sha512.Sum512_256(pub)
	payload := make([]byte, 0, len(pub)+checksumLen)
	payload = append(payload, pub...)
	payload = append(payload, digest[len(digest)-checksumLen:]...)
	return addressEncoding.EncodeToString(payload)
}

// Sign signs arbitrary bytes with the account key.
func (a *Account) Sign(data []byte) []byte {
	return ed25519.Sign(a.PrivateKey, data)
}

// AccountState is the subset of algod account information the platform reads.
type AccountState struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Round   uint64 `json:"round"`
	Status  string `json:"status"`
}

// PendingTransaction reports the confirmation state of a submitted transaction.
type PendingTransaction struct {
	ConfirmedRound uint64 `json:"confirmed-round"`
	PoolError      string `json:"pool-error"`
}

// Client talks to an algod node.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a ledger client for the given algod endpoint.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set(apiTokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call algod: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("algod: status %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SubmitRawTransaction posts a signed transaction and returns its id.
func (c *Client) SubmitRawTransaction(ctx context.Context, signed []byte) (string, error) {
	var out struct {
		TxID string `json:"txId"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/transactions", signed, "application/x-binary", &out); err != nil {
		return "", err
	}
	if out.TxID == "" {
		return "", fmt.Errorf("algod returned empty transaction id")
	}
	return out.TxID, nil
}

// WaitForConfirmation polls until the transaction is confirmed, rejected, or
// the context expires.
func (c *Client) WaitForConfirmation(ctx context.Context, txID string) (uint64, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		var pending PendingTransaction
		if err := c.do(ctx, http.MethodGet, "/v2/transactions/pending/"+txID, nil, "", &pending); err != nil {
			return 0, err
		}
		if pending.PoolError != "" {
			return 0, fmt.Errorf("transaction rejected: %s", pending.PoolError)
		}
		if pending.ConfirmedRound > 0 {
			return pending.ConfirmedRound, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// AccountInformation reads the current state of an address.
func (c *Client) AccountInformation(ctx context.Context, address string) (*AccountState, error) {
	var out AccountState
	if err := c.do(ctx, http.MethodGet, "/v2/accounts/"+address, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package ledger

import (
	"context"
	"fmt"
)

// NoteAnchor binds a client and a dedicated service account into the narrow
// anchoring dependency used by the donation log. The envelope layout is
// signature || public key || note; the signing side of the deployment is
// responsible for wrapping envelopes into chain transactions.
type NoteAnchor struct {
	client  *Client
	account *Account
}

func NewNoteAnchor(client *Client, account *Account) *NoteAnchor {
	return &NoteAnchor{client: client, account: account}
}

// Anchor signs note with the service account, submits the envelope and blocks
// until the network confirms it or ctx expires.
func (a *NoteAnchor) Anchor(ctx context.Context, note []byte) (string, error) {
	sig := a.account.Sign(note)
	envelope := make([]byte, 0, len(sig)+len(a.account.PublicKey)+len(note))
	envelope = append(envelope, sig...)
	envelope = append(envelope, a.account.PublicKey...)
	envelope = append(envelope, note...)

	txID, err := a.client.SubmitRawTransaction(ctx, envelope)
	if err != nil {
		return "", fmt.Errorf("submit note: %w", err)
	}
	if _, err := a.client.WaitForConfirmation(ctx, txID); err != nil {
		return "", fmt.Errorf("confirm note %s: %w", txID, err)
	}
	return txID, nil
}

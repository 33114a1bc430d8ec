package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountRef is one entry of a transaction's ordered account list.
type AccountRef struct {
	Key      solana.PublicKey
	Signer   bool
	Writable bool
}

// Tx is a signed program invocation.
type Tx struct {
	ProgramID  solana.PublicKey
	Accounts   []AccountRef
	Data       []byte
	Signatures []solana.Signature
}

// NewTx converts an instruction into an unsigned transaction.
func NewTx(ix solana.Instruction) (*Tx, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("instruction data: %w", err)
	}

	metas := ix.Accounts()
	refs := make([]AccountRef, len(metas))
	for i, m := range metas {
		refs[i] = AccountRef{Key: m.PublicKey, Signer: m.IsSigner, Writable: m.IsWritable}
	}
	return &Tx{ProgramID: ix.ProgramID(), Accounts: refs, Data: data}, nil
}

// SignInstruction builds a transaction from ix and signs it with keys.
func SignInstruction(ix solana.Instruction, keys ...solana.PrivateKey) (*Tx, error) {
	tx, err := NewTx(ix)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(keys...); err != nil {
		return nil, err
	}
	return tx, nil
}

// Message returns the signed bytes: the program id, the instruction data,
// then every account key followed by its flag byte (bit 0 signer, bit 1
// writable).
func (t *Tx) Message() []byte {
	msg := make([]byte, 0, solana.PublicKeyLength+len(t.Data)+len(t.Accounts)*(solana.PublicKeyLength+1))
	msg = append(msg, t.ProgramID[:]...)
	msg = append(msg, t.Data...)
	for _, ref := range t.Accounts {
		msg = append(msg, ref.Key[:]...)
		msg = append(msg, ref.flags())
	}
	return msg
}

func (r AccountRef) flags() byte {
	var b byte
	if r.Signer {
		b |= 1
	}
	if r.Writable {
		b |= 2
	}
	return b
}

// Signers returns the keys that must sign, in account order.
func (t *Tx) Signers() []solana.PublicKey {
	var signers []solana.PublicKey
	for _, ref := range t.Accounts {
		if ref.Signer {
			signers = append(signers, ref.Key)
		}
	}
	return signers
}

// Sign replaces Signatures with one signature per signer. Every signer must
// have a matching key.
func (t *Tx) Sign(keys ...solana.PrivateKey) error {
	byPub := make(map[solana.PublicKey]solana.PrivateKey, len(keys))
	for _, k := range keys {
		byPub[k.PublicKey()] = k
	}

	msg := t.Message()
	signers := t.Signers()
	sigs := make([]solana.Signature, len(signers))
	for i, pub := range signers {
		key, ok := byPub[pub]
		if !ok {
			return fmt.Errorf("no private key for signer %s", pub)
		}
		sig, err := key.Sign(msg)
		if err != nil {
			return fmt.Errorf("sign as %s: %w", pub, err)
		}
		sigs[i] = sig
	}
	t.Signatures = sigs
	return nil
}

// Verify checks one valid signature per signer, in account order.
func (t *Tx) Verify() error {
	signers := t.Signers()
	if len(signers) != len(t.Signatures) {
		return fmt.Errorf("%w: %d signers, %d signatures", ErrSignature, len(signers), len(t.Signatures))
	}

	msg := t.Message()
	for i, pub := range signers {
		if !t.Signatures[i].Verify(pub, msg) {
			return fmt.Errorf("%w: signer %s", ErrSignature, pub)
		}
	}
	return nil
}

package sdk

import "github.com/gagliardetto/solana-go"

// Sender is the signer set of the current transaction.
type Sender struct {
	Address       solana.PublicKey   `json:"id"`
	RequiredAuths []solana.PublicKey `json:"required_auths"`
}

// Env is the execution snapshot handed to every instruction. The engine never reads the
// sender from anywhere else.
type Env struct {
	TxID   string `json:"tx.id"`
	Sender Sender `json:"msg.sender"`
}

// NewEnv builds an env where addr is the sender and the only required auth.
// Example payload: sdk.NewEnv("tx-1", alice)
func NewEnv(txID string, addr solana.PublicKey) Env {
	return Env{
		TxID: txID,
		Sender: Sender{
			Address:       addr,
			RequiredAuths: []solana.PublicKey{addr},
		},
	}
}

// Signed checks whether addr signed the transaction, either as sender or as an extra auth.
func (e Env) Signed(addr solana.PublicKey) bool {
	if e.Sender.Address.Equals(addr) {
		return true
	}
	for _, a := range e.Sender.RequiredAuths {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}

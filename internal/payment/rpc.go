package payment

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TxStatus is the ledger's view of a submitted signature. A nil *TxStatus
// means the node has not seen it yet.
type TxStatus struct {
	Err                any
	Confirmations      *uint64
	ConfirmationStatus rpc.ConfirmationStatusType
}

// LedgerRPC is the subset of the ledger node the settlement needs.
type LedgerRPC interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (*TxStatus, error)
}

type SolanaRPC struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

func NewSolanaRPC(endpoint string, commitment rpc.CommitmentType) *SolanaRPC {
	if commitment == "" {
		commitment = rpc.CommitmentFinalized
	}
	return &SolanaRPC{client: rpc.New(endpoint), commitment: commitment}
}

func (r *SolanaRPC) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := r.client.GetLatestBlockhash(ctx, r.commitment)
	if err != nil {
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("empty blockhash response")
	}
	return out.Value.Blockhash, nil
}

func (r *SolanaRPC) SignatureStatus(ctx context.Context, sig solana.Signature) (*TxStatus, error) {
	out, err := r.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, err
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	v := out.Value[0]
	return &TxStatus{
		Err:                v.Err,
		Confirmations:      v.Confirmations,
		ConfirmationStatus: v.ConfirmationStatus,
	}, nil
}

// Health is used by the readiness probe.
func (r *SolanaRPC) Health(ctx context.Context) error {
	_, err := r.client.GetHealth(ctx)
	return err
}

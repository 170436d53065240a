// Package payment prepares native-token transfers to the platform wallet and
// waits for the ledger to confirm them.
package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"metastor/internal/apperr"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	DefaultPollInterval   = 2 * time.Second
	DefaultConfirmTimeout = 60 * time.Second
)

type Config struct {
	PlatformWallet string
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// Observer receives the outcome of each confirmation wait.
type Observer interface {
	ObserveConfirmation(outcome string, polls int)
}

type Settlement struct {
	rpc      LedgerRPC
	platform solana.PublicKey
	interval time.Duration
	timeout  time.Duration
	observer Observer
}

func NewSettlement(ledger LedgerRPC, cfg Config) (*Settlement, error) {
	platform, err := solana.PublicKeyFromBase58(cfg.PlatformWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid platform wallet: %w", err)
	}
	s := &Settlement{
		rpc:      ledger,
		platform: platform,
		interval: cfg.PollInterval,
		timeout:  cfg.ConfirmTimeout,
	}
	if s.interval <= 0 {
		s.interval = DefaultPollInterval
	}
	if s.timeout <= 0 {
		s.timeout = DefaultConfirmTimeout
	}
	return s, nil
}

func (s *Settlement) SetObserver(o Observer) {
	s.observer = o
}

func (s *Settlement) PlatformWallet() string {
	return s.platform.String()
}

type UnsignedTransfer struct {
	Tx         *solana.Transaction
	Serialized string
	Lamports   uint64
	Blockhash  solana.Hash
}

// ToLamports converts a native amount to the ledger's smallest unit.
func ToLamports(amount float64) uint64 {
	return uint64(math.Round(amount * float64(solana.LAMPORTS_PER_SOL)))
}

// PrepareTransfer builds a single transfer from "from" to the platform wallet
// with "from" as fee payer. The result is serialized with empty signature
// slots for the wallet to fill in.
func (s *Settlement) PrepareTransfer(ctx context.Context, from string, amount float64) (*UnsignedTransfer, error) {
	payer, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return nil, apperr.MalformedInput("invalid wallet address: %v", err)
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperr.MalformedInput("invalid transfer amount %v", amount)
	}
	lamports := ToLamports(amount)

	blockhash, err := s.rpc.LatestBlockhash(ctx)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("ledger rpc", err)
	}

	ix := system.NewTransferInstruction(lamports, payer, s.platform).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, apperr.Internal("failed to build transfer", err)
	}

	serialized, err := serializeUnsigned(tx)
	if err != nil {
		return nil, apperr.Internal("failed to serialize transfer", err)
	}

	return &UnsignedTransfer{
		Tx:         tx,
		Serialized: serialized,
		Lamports:   lamports,
		Blockhash:  blockhash,
	}, nil
}

func serializeUnsigned(tx *solana.Transaction) (string, error) {
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ConfirmTransaction polls the signature status until the ledger reports an
// error, a confirmation, or the budget runs out. A status the node does not
// know yet counts as pending. The budget also bounds RPC calls in flight, so
// at most budget/interval polls are made. Cancelling ctx stops the wait.
func (s *Settlement) ConfirmTransaction(ctx context.Context, signature string) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return apperr.MalformedInput("invalid transaction signature: %v", err)
	}

	deadline := time.Now().Add(s.timeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	polls := 0
	for {
		polls++
		status, err := s.rpc.SignatureStatus(pollCtx, sig)
		switch {
		case err != nil && pollCtx.Err() != nil:
			return s.stopped(ctx, polls)
		case err != nil:
			s.observe("upstream_error", polls)
			return apperr.UpstreamUnavailable("ledger rpc", err)
		case status != nil && status.Err != nil:
			s.observe("failed", polls)
			return apperr.Failed(failureReason(status.Err))
		case status != nil && confirmed(status):
			s.observe("confirmed", polls)
			return nil
		}

		select {
		case <-pollCtx.Done():
			return s.stopped(ctx, polls)
		case <-ticker.C:
			if !time.Now().Before(deadline) {
				return s.stopped(ctx, polls)
			}
		}
	}
}

// stopped reports why the wait ended early: the caller went away, or the
// budget ran out while ctx is still live.
func (s *Settlement) stopped(ctx context.Context, polls int) error {
	if err := ctx.Err(); err != nil {
		s.observe("cancelled", polls)
		return apperr.Wrap(err, apperr.KindTimedOut, "confirmation wait cancelled")
	}
	s.observe("timed_out", polls)
	return apperr.TimedOut(fmt.Sprintf("transaction not confirmed within %s", s.timeout))
}

func (s *Settlement) observe(outcome string, polls int) {
	if s.observer != nil {
		s.observer.ObserveConfirmation(outcome, polls)
	}
}

func confirmed(st *TxStatus) bool {
	if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		return true
	}
	return st.Confirmations != nil && *st.Confirmations >= 1
}

func failureReason(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

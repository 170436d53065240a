package payment

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"metastor/internal/apperr"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu        sync.Mutex
	blockhash solana.Hash
	hashErr   error
	statuses  []*TxStatus
	statusErr error
	calls     int
	// latency delays every status call; the call gives up when ctx ends.
	latency time.Duration
}

func (f *fakeLedger) LatestBlockhash(context.Context) (solana.Hash, error) {
	return f.blockhash, f.hashErr
}

// SignatureStatus replays statuses in order and repeats the last one.
func (f *fakeLedger) SignatureStatus(ctx context.Context, _ solana.Signature) (*TxStatus, error) {
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
			f.mu.Lock()
			f.calls++
			f.mu.Unlock()
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statuses) == 0 {
		return nil, nil
	}
	i := f.calls - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func (f *fakeLedger) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSettlement(t *testing.T, ledger LedgerRPC, interval, timeout time.Duration) (*Settlement, solana.PublicKey) {
	t.Helper()
	platform := solana.NewWallet().PublicKey()
	s, err := NewSettlement(ledger, Config{
		PlatformWallet: platform.String(),
		PollInterval:   interval,
		ConfirmTimeout: timeout,
	})
	require.NoError(t, err)
	return s, platform
}

func testSignature() string {
	var sig solana.Signature
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	return sig.String()
}

func TestNewSettlement_InvalidWallet(t *testing.T) {
	_, err := NewSettlement(&fakeLedger{}, Config{PlatformWallet: "not-a-key"})
	require.Error(t, err)
}

func TestToLamports(t *testing.T) {
	assert.Equal(t, uint64(7_500_000_000), ToLamports(7.5))
	assert.Equal(t, uint64(0), ToLamports(0))
	assert.Equal(t, uint64(351_700_000), ToLamports(0.3517))
}

func TestPrepareTransfer(t *testing.T) {
	hash := solana.Hash{9, 9, 9}
	ledger := &fakeLedger{blockhash: hash}
	s, platform := newTestSettlement(t, ledger, time.Millisecond, time.Second)
	payer := solana.NewWallet().PublicKey()

	out, err := s.PrepareTransfer(context.Background(), payer.String(), 7.5)
	require.NoError(t, err)

	assert.Equal(t, uint64(7_500_000_000), out.Lamports)
	assert.Equal(t, hash, out.Blockhash)
	assert.Equal(t, hash, out.Tx.Message.RecentBlockhash)
	require.NotEmpty(t, out.Tx.Message.AccountKeys)
	assert.Equal(t, payer, out.Tx.Message.AccountKeys[0])
	assert.Contains(t, out.Tx.Message.AccountKeys, platform)
	assert.Equal(t, uint8(1), out.Tx.Message.Header.NumRequiredSignatures)

	require.Len(t, out.Tx.Message.Instructions, 1)
	ix := out.Tx.Message.Instructions[0]
	program := out.Tx.Message.AccountKeys[ix.ProgramIDIndex]
	assert.Equal(t, solana.SystemProgramID, program)

	data := []byte(ix.Data)
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, out.Lamports, binary.LittleEndian.Uint64(data[4:]))

	raw, err := base64.StdEncoding.DecodeString(out.Serialized)
	require.NoError(t, err)
	decoded, err := solana.TransactionFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, hash, decoded.Message.RecentBlockhash)
	assert.Equal(t, payer, decoded.Message.AccountKeys[0])
}

func TestPrepareTransfer_Errors(t *testing.T) {
	t.Run("blockhash unavailable", func(t *testing.T) {
		s, _ := newTestSettlement(t, &fakeLedger{hashErr: errors.New("connection refused")}, time.Millisecond, time.Second)
		_, err := s.PrepareTransfer(context.Background(), solana.NewWallet().PublicKey().String(), 1)
		assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	})

	t.Run("bad payer", func(t *testing.T) {
		s, _ := newTestSettlement(t, &fakeLedger{}, time.Millisecond, time.Second)
		_, err := s.PrepareTransfer(context.Background(), "0OIl", 1)
		assert.Equal(t, apperr.KindMalformedInput, apperr.KindOf(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		s, _ := newTestSettlement(t, &fakeLedger{}, time.Millisecond, time.Second)
		_, err := s.PrepareTransfer(context.Background(), solana.NewWallet().PublicKey().String(), -1)
		assert.Equal(t, apperr.KindMalformedInput, apperr.KindOf(err))
	})
}

func uint64Ptr(v uint64) *uint64 { return &v }

func TestConfirmTransaction(t *testing.T) {
	tests := []struct {
		name     string
		statuses []*TxStatus
		wantKind apperr.Kind
		wantOK   bool
		wantPoll int
	}{
		{
			name:     "confirmed status",
			statuses: []*TxStatus{{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}},
			wantOK:   true,
			wantPoll: 1,
		},
		{
			name:     "finalized status",
			statuses: []*TxStatus{{ConfirmationStatus: rpc.ConfirmationStatusFinalized}},
			wantOK:   true,
			wantPoll: 1,
		},
		{
			name:     "confirmation count",
			statuses: []*TxStatus{{ConfirmationStatus: rpc.ConfirmationStatusProcessed, Confirmations: uint64Ptr(1)}},
			wantOK:   true,
			wantPoll: 1,
		},
		{
			name:     "null then confirmed",
			statuses: []*TxStatus{nil, nil, {ConfirmationStatus: rpc.ConfirmationStatusConfirmed}},
			wantOK:   true,
			wantPoll: 3,
		},
		{
			name:     "processed then confirmed",
			statuses: []*TxStatus{{ConfirmationStatus: rpc.ConfirmationStatusProcessed, Confirmations: uint64Ptr(0)}, {ConfirmationStatus: rpc.ConfirmationStatusConfirmed}},
			wantOK:   true,
			wantPoll: 2,
		},
		{
			name:     "ledger error",
			statuses: []*TxStatus{{Err: "InsufficientFunds"}},
			wantKind: apperr.KindFailed,
			wantPoll: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{statuses: tt.statuses}
			s, _ := newTestSettlement(t, ledger, time.Millisecond, 5*time.Second)

			err := s.ConfirmTransaction(context.Background(), testSignature())
			if tt.wantOK {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			}
			assert.Equal(t, tt.wantPoll, ledger.Calls())
		})
	}
}

func TestConfirmTransaction_FailureReason(t *testing.T) {
	ledger := &fakeLedger{statuses: []*TxStatus{{Err: "InsufficientFunds"}}}
	s, _ := newTestSettlement(t, ledger, time.Millisecond, time.Second)

	err := s.ConfirmTransaction(context.Background(), testSignature())
	require.Error(t, err)
	assert.Equal(t, "InsufficientFunds", apperr.DetailOf(err))

	ledger = &fakeLedger{statuses: []*TxStatus{{Err: map[string]any{"InstructionError": []any{0, "Custom"}}}}}
	s, _ = newTestSettlement(t, ledger, time.Millisecond, time.Second)
	err = s.ConfirmTransaction(context.Background(), testSignature())
	assert.Equal(t, `{"InstructionError":[0,"Custom"]}`, apperr.DetailOf(err))
}

func TestConfirmTransaction_TimesOutWithBoundedPolls(t *testing.T) {
	ledger := &fakeLedger{}
	interval := 10 * time.Millisecond
	timeout := 100 * time.Millisecond
	s, _ := newTestSettlement(t, ledger, interval, timeout)

	start := time.Now()
	err := s.ConfirmTransaction(context.Background(), testSignature())
	elapsed := time.Since(start)

	assert.Equal(t, apperr.KindTimedOut, apperr.KindOf(err))
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.LessOrEqual(t, ledger.Calls(), int(timeout/interval))
	assert.GreaterOrEqual(t, ledger.Calls(), 1)

	calls := ledger.Calls()
	time.Sleep(5 * interval)
	assert.Equal(t, calls, ledger.Calls(), "poller kept running after timeout")
}

func TestConfirmTransaction_BudgetBoundsSlowLedger(t *testing.T) {
	ledger := &fakeLedger{latency: 500 * time.Millisecond}
	timeout := 50 * time.Millisecond
	s, _ := newTestSettlement(t, ledger, 10*time.Millisecond, timeout)

	start := time.Now()
	err := s.ConfirmTransaction(context.Background(), testSignature())
	elapsed := time.Since(start)

	assert.Equal(t, apperr.KindTimedOut, apperr.KindOf(err))
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, 250*time.Millisecond)
	assert.Equal(t, 1, ledger.Calls())
}

func TestConfirmTransaction_CancelledDuringSlowCall(t *testing.T) {
	ledger := &fakeLedger{latency: time.Minute}
	s, _ := newTestSettlement(t, ledger, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.ConfirmTransaction(ctx, testSignature())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, apperr.KindTimedOut, apperr.KindOf(err))
	assert.Equal(t, "confirmation wait cancelled", apperr.DetailOf(err))
}

func TestConfirmTransaction_Cancelled(t *testing.T) {
	ledger := &fakeLedger{}
	s, _ := newTestSettlement(t, ledger, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ConfirmTransaction(ctx, testSignature()) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, apperr.KindTimedOut, apperr.KindOf(err))
	case <-time.After(time.Second):
		t.Fatal("ConfirmTransaction did not return after cancel")
	}
}

func TestConfirmTransaction_UpstreamError(t *testing.T) {
	ledger := &fakeLedger{statusErr: errors.New("503")}
	s, _ := newTestSettlement(t, ledger, time.Millisecond, time.Second)

	err := s.ConfirmTransaction(context.Background(), testSignature())
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Equal(t, 1, ledger.Calls())
}

func TestConfirmTransaction_MalformedSignature(t *testing.T) {
	ledger := &fakeLedger{}
	s, _ := newTestSettlement(t, ledger, time.Millisecond, time.Second)

	err := s.ConfirmTransaction(context.Background(), "***")
	assert.Equal(t, apperr.KindMalformedInput, apperr.KindOf(err))
	assert.Zero(t, ledger.Calls())
}

type recordingObserver struct {
	outcome string
	polls   int
}

func (r *recordingObserver) ObserveConfirmation(outcome string, polls int) {
	r.outcome, r.polls = outcome, polls
}

func TestConfirmTransaction_Observer(t *testing.T) {
	ledger := &fakeLedger{statuses: []*TxStatus{nil, {ConfirmationStatus: rpc.ConfirmationStatusFinalized}}}
	s, _ := newTestSettlement(t, ledger, time.Millisecond, time.Second)
	obs := &recordingObserver{}
	s.SetObserver(obs)

	require.NoError(t, s.ConfirmTransaction(context.Background(), testSignature()))
	assert.Equal(t, "confirmed", obs.outcome)
	assert.Equal(t, 2, obs.polls)
}

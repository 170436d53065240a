// Package subscription owns the subscription lifecycle: quoting a paid tier,
// activating it once the payment is confirmed on the ledger, and answering
// which plan currently applies to an account.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"metastor/internal/apperr"
	"metastor/internal/database"
	"metastor/internal/models"
	"metastor/internal/payment"
	"metastor/internal/plans"
	"metastor/internal/quota"
)

const (
	HistoryLimit = 20

	EventActivated = "subscription.activated"
	EventQuoted    = "subscription.quoted"
)

// Repository is the persistence the manager needs. Lookups return (nil, nil)
// when the row does not exist.
type Repository interface {
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	LatestActiveSubscription(ctx context.Context, accountID int64) (*models.Subscription, error)
	ListPaidSubscriptions(ctx context.Context, accountID int64, limit int) ([]models.Subscription, error)
	// ActivateSubscription deactivates every other active row of the account
	// and activates subID in one transaction, provided the active row is still
	// expectedActive (0 for none). changed is false when subID was already
	// active with the same signature.
	ActivateSubscription(ctx context.Context, accountID, subID int64, signature string, start time.Time, expectedActive int64) (sub *models.Subscription, changed bool, err error)
}

type Settler interface {
	PrepareTransfer(ctx context.Context, from string, amount float64) (*payment.UnsignedTransfer, error)
	ConfirmTransaction(ctx context.Context, signature string) error
}

type Notifier interface {
	Notify(ctx context.Context, accountID int64, eventType string, payload any)
}

type Manager struct {
	repo     Repository
	settler  Settler
	oracle   plans.PriceOracle
	ledger   *quota.Ledger
	notifier Notifier
	now      func() time.Time
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(repo Repository, settler Settler, oracle plans.PriceOracle, ledger *quota.Ledger, opts ...Option) *Manager {
	m := &Manager{
		repo:    repo,
		settler: settler,
		oracle:  oracle,
		ledger:  ledger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type Quote struct {
	TxSerialized   string               `json:"txSerialized"`
	SubscriptionID int64                `json:"subscriptionId"`
	Amount         float64              `json:"amount"`
	USDAmount      float64              `json:"usdAmount"`
	SolPrice       float64              `json:"solPrice"`
	Subscription   *models.Subscription `json:"-"`
}

func (m *Manager) price(ctx context.Context) (float64, error) {
	p, err := m.oracle.Price(ctx)
	if err != nil {
		return 0, apperr.UpstreamUnavailable("price oracle", err)
	}
	if p <= 0 {
		return 0, apperr.UpstreamUnavailable("price oracle", fmt.Errorf("non-positive price %v", p))
	}
	return p, nil
}

func (m *Manager) account(ctx context.Context, accountID int64) (*models.Account, error) {
	acc, err := m.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, apperr.Internal("failed to load account", err)
	}
	if acc == nil {
		return nil, apperr.NotFound("account")
	}
	return acc, nil
}

// Quote prices tier/period in native tokens, prepares the transfer for the
// account wallet to sign and stores the subscription unactivated.
func (m *Manager) Quote(ctx context.Context, accountID int64, tier models.Tier, period models.Period) (*Quote, error) {
	if !tier.Paid() {
		return nil, apperr.InvalidTier(tier.String())
	}
	if _, err := models.ParsePeriod(period.String()); err != nil {
		return nil, apperr.MalformedInput("%v", err)
	}

	acc, err := m.account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	price, err := m.price(ctx)
	if err != nil {
		return nil, err
	}
	plan := plans.GetPlan(tier)
	usd := plan.Price(period)
	amount, err := plans.PriceInNativeToken(usd, price)
	if err != nil {
		return nil, apperr.Internal("failed to convert price", err)
	}

	transfer, err := m.settler.PrepareTransfer(ctx, acc.PubKey, amount)
	if err != nil {
		return nil, err
	}

	now := m.now()
	end := period.End(now)
	sub, err := m.repo.CreateSubscription(ctx, &models.Subscription{
		AccountID: accountID,
		Tier:      tier,
		Period:    period,
		Amount:    amount,
		Active:    false,
		StartDate: now,
		EndDate:   &end,
	})
	if err != nil {
		return nil, apperr.Internal("failed to store subscription", err)
	}
	m.notify(ctx, accountID, EventQuoted, sub)

	return &Quote{
		TxSerialized:   transfer.Serialized,
		SubscriptionID: sub.ID,
		Amount:         amount,
		USDAmount:      usd,
		SolPrice:       price,
		Subscription:   sub,
	}, nil
}

// Confirm waits for the ledger to confirm signature and then activates the
// subscription. On a timeout or ledger failure the row stays quoted and the
// call may be repeated with the same signature.
func (m *Manager) Confirm(ctx context.Context, accountID, subscriptionID int64, signature string) (*models.Subscription, error) {
	if signature == "" {
		return nil, apperr.MalformedInput("signature is required")
	}
	sub, err := m.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, apperr.Internal("failed to load subscription", err)
	}
	if sub == nil {
		return nil, apperr.NotFound("subscription")
	}
	if sub.AccountID != accountID {
		return nil, apperr.Forbidden("subscription belongs to another account")
	}
	if sub.TransactionSignature != nil {
		if *sub.TransactionSignature == signature && sub.Active {
			return sub, nil
		}
		return nil, apperr.Conflict("subscription was already confirmed with another transaction")
	}

	// The active row seen now must still be active at commit, so of two
	// racing confirms only the first activates and the other stays quoted.
	prior, err := m.repo.LatestActiveSubscription(ctx, accountID)
	if err != nil {
		return nil, apperr.Internal("failed to load subscription", err)
	}
	var expectedActive int64
	if prior != nil {
		expectedActive = prior.ID
	}

	if err := m.settler.ConfirmTransaction(ctx, signature); err != nil {
		return nil, err
	}

	activated, changed, err := m.repo.ActivateSubscription(ctx, accountID, subscriptionID, signature, m.now(), expectedActive)
	switch {
	case errors.Is(err, database.ErrActiveSubscriptionChanged):
		return nil, apperr.Conflict("another subscription was activated while this one was confirming")
	case errors.Is(err, database.ErrSignatureAlreadyUsed):
		return nil, apperr.Conflict("transaction signature already activated a subscription")
	case errors.Is(err, database.ErrSubscriptionConfirmed):
		return nil, apperr.Conflict("subscription was already confirmed with another transaction")
	case errors.Is(err, database.ErrSubscriptionNotFound):
		return nil, apperr.NotFound("subscription")
	case err != nil:
		return nil, apperr.Internal("failed to activate subscription", err)
	}
	if changed {
		m.notify(ctx, accountID, EventActivated, activated)
	}
	return activated, nil
}

// Current returns the newest active subscription, or a synthetic free one
// when there is none or it has expired.
func (m *Manager) Current(ctx context.Context, accountID int64) (*models.Subscription, plans.Plan, error) {
	sub, err := m.repo.LatestActiveSubscription(ctx, accountID)
	if err != nil {
		return nil, plans.Plan{}, apperr.Internal("failed to load subscription", err)
	}
	if sub != nil && !sub.Expired(m.now()) {
		return sub, plans.GetPlan(sub.Tier), nil
	}

	acc, err := m.account(ctx, accountID)
	if err != nil {
		return nil, plans.Plan{}, err
	}
	free := &models.Subscription{
		AccountID: accountID,
		Tier:      models.TierFree,
		Period:    models.PeriodMonthly,
		Active:    true,
		StartDate: acc.CreatedAt,
	}
	return free, plans.GetPlan(models.TierFree), nil
}

type StorageStatus struct {
	Used       uint64      `json:"used,string"`
	Limit      uint64      `json:"limit,string"`
	Tier       models.Tier `json:"tier"`
	Percentage float64     `json:"percentage"`
}

func (m *Manager) StorageStatus(ctx context.Context, accountID int64) (*StorageStatus, error) {
	_, plan, err := m.Current(ctx, accountID)
	if err != nil {
		return nil, err
	}
	used, err := m.ledger.Usage(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &StorageStatus{
		Used:       used,
		Limit:      plan.StorageLimitBytes,
		Tier:       plan.Tier,
		Percentage: quota.Percentage(used, plan.StorageLimitBytes),
	}, nil
}

type Payment struct {
	ID            string        `json:"id"`
	Amount        float64       `json:"amount"`
	Tier          models.Tier   `json:"tier"`
	Period        models.Period `json:"period"`
	TransactionID string        `json:"transactionId"`
	CreatedAt     time.Time     `json:"createdAt"`
	Status        string        `json:"status"`
}

// History lists confirmed payments, newest first.
func (m *Manager) History(ctx context.Context, accountID int64) ([]Payment, error) {
	subs, err := m.repo.ListPaidSubscriptions(ctx, accountID, HistoryLimit)
	if err != nil {
		return nil, apperr.Internal("failed to load payment history", err)
	}
	out := make([]Payment, 0, len(subs))
	for _, s := range subs {
		p := Payment{
			ID:        fmt.Sprint(s.ID),
			Amount:    s.Amount,
			Tier:      s.Tier,
			Period:    s.Period,
			CreatedAt: s.CreatedAt,
			Status:    "completed",
		}
		if s.TransactionSignature != nil {
			p.TransactionID = *s.TransactionSignature
		}
		out = append(out, p)
	}
	return out, nil
}

type PricedPlan struct {
	plans.Plan
	MonthlySolPrice float64 `json:"monthlySolPrice"`
	YearlySolPrice  float64 `json:"yearlySolPrice"`
	SolPrice        float64 `json:"solPrice"`
}

// Plans returns the catalog priced at the current oracle rate.
func (m *Manager) Plans(ctx context.Context) ([]PricedPlan, float64, error) {
	price, err := m.price(ctx)
	if err != nil {
		return nil, 0, err
	}
	all := plans.All()
	out := make([]PricedPlan, 0, len(all))
	for _, p := range all {
		monthly, _ := plans.PriceInNativeToken(p.MonthlyPriceUSD, price)
		yearly, _ := plans.PriceInNativeToken(p.YearlyPriceUSD, price)
		out = append(out, PricedPlan{Plan: p, MonthlySolPrice: monthly, YearlySolPrice: yearly, SolPrice: price})
	}
	return out, price, nil
}

// Admission is held by an upload between the quota check and the metadata
// insert. Release must be called exactly once.
type Admission struct {
	Plan plans.Plan
	// Used is the account usage once the admitted bytes are stored.
	Used    uint64
	release func()
}

func (a *Admission) Release() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

// Admit checks an incoming upload against the current plan and keeps the
// account locked until the returned admission is released.
func (m *Manager) Admit(ctx context.Context, accountID int64, size uint64) (*Admission, error) {
	_, plan, err := m.Current(ctx, accountID)
	if err != nil {
		return nil, err
	}
	unlock := m.ledger.Lock(accountID)
	used, err := m.ledger.Usage(ctx, accountID)
	if err != nil {
		unlock()
		return nil, err
	}
	if _, err := quota.Evaluate(used, size, plan); err != nil {
		unlock()
		return nil, err
	}
	return &Admission{Plan: plan, Used: used + size, release: unlock}, nil
}

func (m *Manager) notify(ctx context.Context, accountID int64, eventType string, payload any) {
	if m.notifier != nil {
		m.notifier.Notify(ctx, accountID, eventType, payload)
	}
}

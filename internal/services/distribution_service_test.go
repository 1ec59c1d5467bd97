package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/distribution"
	"github.com/clipfund/backend/internal/events"
	"github.com/clipfund/backend/internal/models"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeTx struct {
	committed bool
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

type fakeCampaignTxStore struct {
	campaign           *models.Campaign
	stats              *models.PoolStats
	completed          bool
	insuranceTriggered bool
}

func (f *fakeCampaignTxStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	if f.campaign == nil {
		return nil, pgx.ErrNoRows
	}
	return f.campaign, nil
}

func (f *fakeCampaignTxStore) UpdatePoolStats(ctx context.Context, id uuid.UUID, stats models.PoolStats) error {
	f.stats = &stats
	return nil
}

func (f *fakeCampaignTxStore) MarkCompleted(ctx context.Context, id uuid.UUID, insuranceTriggered bool, completedAt time.Time) error {
	f.completed = true
	f.insuranceTriggered = insuranceTriggered
	return nil
}

type fakeSubmissionTxStore struct {
	agg     repositories.Aggregate
	subs    []models.Submission
	zeroed  bool
	shares  map[uuid.UUID]float64
	payouts map[uuid.UUID]decimal.Decimal
}

func (f *fakeSubmissionTxStore) AggregateApproved(ctx context.Context, campaignID uuid.UUID) (repositories.Aggregate, error) {
	return f.agg, nil
}

func (f *fakeSubmissionTxStore) ListApprovedByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Submission, error) {
	return f.subs, nil
}

func (f *fakeSubmissionTxStore) ZeroPayouts(ctx context.Context, campaignID uuid.UUID) error {
	f.zeroed = true
	return nil
}

func (f *fakeSubmissionTxStore) SetPayout(ctx context.Context, id uuid.UUID, sharePercent float64, earnings decimal.Decimal) error {
	if f.shares == nil {
		f.shares = map[uuid.UUID]float64{}
		f.payouts = map[uuid.UUID]decimal.Decimal{}
	}
	f.shares[id] = sharePercent
	f.payouts[id] = earnings
	return nil
}

type fakeLedgerTxStore struct {
	credits map[uuid.UUID]decimal.Decimal
	txs     []models.Transaction
}

func (f *fakeLedgerTxStore) IncrementBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if f.credits == nil {
		f.credits = map[uuid.UUID]decimal.Decimal{}
	}
	f.credits[userID] = f.credits[userID].Add(amount)
	return nil
}

func (f *fakeLedgerTxStore) RecordTransaction(ctx context.Context, t *models.Transaction) error {
	f.txs = append(f.txs, *t)
	return nil
}

type fakeAuditTxStore struct {
	entries []models.AuditLog
}

func (f *fakeAuditTxStore) Log(ctx context.Context, entry models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeEventPublisher struct {
	published []events.Event
}

func (f *fakeEventPublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func newTestDistributionService(pub events.Publisher) *DistributionService {
	return &DistributionService{
		publisher: pub,
		cfg:       &config.Config{DistributionTxTimeout: time.Second},
		log:       zap.NewNop(),
	}
}

func activeCampaign(budget, commission int64) *models.Campaign {
	return &models.Campaign{
		ID:                uuid.New(),
		ArtistUserID:      uuid.New(),
		Title:             "spring drop promo",
		TotalBudget:       decimal.NewFromInt(budget),
		CommissionPercent: decimal.NewFromInt(commission),
		Status:            models.CampaignStatusActive,
	}
}

func TestDistributeRejectsCompletedCampaign(t *testing.T) {
	campaign := activeCampaign(50000, 20)
	campaign.Status = models.CampaignStatusCompleted

	tx := &fakeTx{}
	ledger := &fakeLedgerTxStore{}
	svc := newTestDistributionService(&fakeEventPublisher{})

	_, err := svc.distribute(context.Background(), tx,
		&fakeCampaignTxStore{campaign: campaign},
		&fakeSubmissionTxStore{}, ledger, &fakeAuditTxStore{}, campaign.ID)

	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if tx.committed {
		t.Error("rejected run must not commit")
	}
	if len(ledger.credits) != 0 || len(ledger.txs) != 0 {
		t.Error("rejected run must not touch the ledger")
	}
}

func TestDistributeRejectsMissingCampaign(t *testing.T) {
	tx := &fakeTx{}
	svc := newTestDistributionService(&fakeEventPublisher{})

	_, err := svc.distribute(context.Background(), tx,
		&fakeCampaignTxStore{}, &fakeSubmissionTxStore{},
		&fakeLedgerTxStore{}, &fakeAuditTxStore{}, uuid.New())

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if tx.committed {
		t.Error("missing campaign must not commit")
	}
}

func TestDistributeInsuranceRefundKeepsCommission(t *testing.T) {
	// Default bracket needs 3 submissions, 800 points, 30000 views; two thin
	// submissions fail all three checks.
	campaign := activeCampaign(10000, 10)
	tx := &fakeTx{}
	campaigns := &fakeCampaignTxStore{campaign: campaign}
	submissions := &fakeSubmissionTxStore{agg: repositories.Aggregate{
		TotalPoints:      500,
		TotalViews:       10000,
		TotalSubmissions: 2,
	}}
	ledger := &fakeLedgerTxStore{}
	audit := &fakeAuditTxStore{}
	pub := &fakeEventPublisher{}
	svc := newTestDistributionService(pub)

	result, err := svc.distribute(context.Background(), tx, campaigns, submissions, ledger, audit, campaign.ID)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}

	if result.Outcome != distribution.OutcomeInsuranceRefund {
		t.Errorf("outcome = %v, want %v", result.Outcome, distribution.OutcomeInsuranceRefund)
	}
	if len(result.FailedChecks) != 3 {
		t.Errorf("failed checks = %v, want all three", result.FailedChecks)
	}

	// Only the net budget comes back; the 10% commission stays with the house.
	wantRefund := decimal.NewFromInt(9000)
	if !result.RefundAmount.Equal(wantRefund) {
		t.Errorf("refund = %v, want %v", result.RefundAmount, wantRefund)
	}
	if got := ledger.credits[campaign.ArtistUserID]; !got.Equal(wantRefund) {
		t.Errorf("artist credited %v, want %v", got, wantRefund)
	}
	if len(ledger.txs) != 1 || ledger.txs[0].Type != models.TransactionTypeRefund {
		t.Fatalf("expected one refund transaction, got %+v", ledger.txs)
	}
	if ledger.txs[0].ReferenceID == nil || *ledger.txs[0].ReferenceID != campaign.ID {
		t.Error("refund transaction should reference the campaign")
	}

	if !submissions.zeroed {
		t.Error("refund must clear stale submission payouts")
	}
	if !campaigns.completed || !campaigns.insuranceTriggered {
		t.Errorf("campaign completed=%v insurance=%v, want true/true", campaigns.completed, campaigns.insuranceTriggered)
	}
	if !tx.committed {
		t.Error("refund path must commit")
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.EventCampaignCompleted {
		t.Errorf("expected one completion event, got %+v", pub.published)
	}
}

func TestDistributeRefundsWhenNobodyEligible(t *testing.T) {
	// Insurance passes in aggregate, but every individual submission sits
	// under the 50-point eligibility floor.
	campaign := activeCampaign(10000, 10)
	var subs []models.Submission
	for i := 0; i < 20; i++ {
		subs = append(subs, models.Submission{
			ID:            uuid.New(),
			CampaignID:    campaign.ID,
			CreatorUserID: uuid.New(),
			TotalPoints:   45,
			Views:         2000,
		})
	}

	tx := &fakeTx{}
	campaigns := &fakeCampaignTxStore{campaign: campaign}
	submissions := &fakeSubmissionTxStore{
		agg:  repositories.Aggregate{TotalPoints: 900, TotalViews: 40000, TotalSubmissions: 20},
		subs: subs,
	}
	ledger := &fakeLedgerTxStore{}
	pub := &fakeEventPublisher{}
	svc := newTestDistributionService(pub)

	result, err := svc.distribute(context.Background(), tx, campaigns, submissions, ledger, &fakeAuditTxStore{}, campaign.ID)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}

	if result.Outcome != distribution.OutcomeInsuranceRefundNoEligible {
		t.Errorf("outcome = %v, want %v", result.Outcome, distribution.OutcomeInsuranceRefundNoEligible)
	}
	wantRefund := decimal.NewFromInt(9000)
	if got := ledger.credits[campaign.ArtistUserID]; !got.Equal(wantRefund) {
		t.Errorf("artist credited %v, want %v", got, wantRefund)
	}
	if !campaigns.insuranceTriggered {
		t.Error("no-eligible refund must set the insurance flag")
	}
	if !tx.committed {
		t.Error("no-eligible path must commit")
	}
}

func TestDistributePaysEligibleAndZeroesRest(t *testing.T) {
	// Budget 50000 at 20% commission distributes a 40000 pool. Four creators
	// clear both eligibility thresholds; the 3000-view straggler (30 points)
	// falls under the point floor and must end at zero.
	campaign := activeCampaign(50000, 20)
	views := []int64{850000, 320000, 280000, 95000, 3000}
	var subs []models.Submission
	var agg repositories.Aggregate
	for _, v := range views {
		sub := models.Submission{
			ID:            uuid.New(),
			CampaignID:    campaign.ID,
			CreatorUserID: uuid.New(),
			TotalPoints:   distribution.CalculatePoints(v, 0, 0).TotalPoints,
			Views:         v,
		}
		subs = append(subs, sub)
		agg.TotalPoints += sub.TotalPoints
		agg.TotalViews += v
		agg.TotalSubmissions++
	}

	tx := &fakeTx{}
	campaigns := &fakeCampaignTxStore{campaign: campaign}
	submissions := &fakeSubmissionTxStore{agg: agg, subs: subs}
	ledger := &fakeLedgerTxStore{}
	pub := &fakeEventPublisher{}
	svc := newTestDistributionService(pub)

	result, err := svc.distribute(context.Background(), tx, campaigns, submissions, ledger, &fakeAuditTxStore{}, campaign.ID)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}

	if result.Outcome != distribution.OutcomeDistributed {
		t.Fatalf("outcome = %v, want %v", result.Outcome, distribution.OutcomeDistributed)
	}
	if !submissions.zeroed {
		t.Error("payouts must be cleared before the winners are written")
	}

	straggler := subs[4]
	if _, ok := submissions.payouts[straggler.ID]; ok {
		t.Error("ineligible submission must not receive a payout row")
	}
	if _, ok := ledger.credits[straggler.CreatorUserID]; ok {
		t.Error("ineligible creator must not be credited")
	}
	if _, ok := ledger.credits[campaign.ArtistUserID]; ok {
		t.Error("artist must not be credited on a distributed campaign")
	}
	if len(result.Payouts) != 4 {
		t.Fatalf("payouts = %d, want 4", len(result.Payouts))
	}

	var shareSum float64
	earningsSum := decimal.Zero
	for _, p := range result.Payouts {
		shareSum += p.SharePercent
		earningsSum = earningsSum.Add(p.Amount)
		if !p.Amount.Equal(ledger.credits[p.CreatorUserID]) {
			t.Errorf("creator %s credited %v, payout says %v", p.CreatorUserID, ledger.credits[p.CreatorUserID], p.Amount)
		}
	}
	if math.Abs(shareSum-1.0) > 1e-4 {
		t.Errorf("share sum = %v, want ~1.0", shareSum)
	}
	netBudget := decimal.NewFromInt(40000)
	if diff := earningsSum.Sub(netBudget).Abs(); diff.GreaterThan(decimal.NewFromFloat(0.05)) {
		t.Errorf("earnings sum = %v, want ~%v", earningsSum, netBudget)
	}

	// The whale holds over 50% of the eligible pool and must be capped.
	if got := submissions.shares[subs[0].ID]; got != distribution.MaxSharePercent {
		t.Errorf("dominant share = %v, want %v", got, distribution.MaxSharePercent)
	}

	for _, tr := range ledger.txs {
		if tr.Type != models.TransactionTypeEarning {
			t.Errorf("transaction type = %v, want earning", tr.Type)
		}
	}
	if len(ledger.txs) != 4 {
		t.Errorf("transactions = %d, want 4", len(ledger.txs))
	}

	if campaigns.stats == nil || campaigns.stats.TotalPoints != agg.TotalPoints {
		t.Errorf("pool stats snapshot = %+v, want total %v", campaigns.stats, agg.TotalPoints)
	}
	if !campaigns.completed || campaigns.insuranceTriggered {
		t.Errorf("campaign completed=%v insurance=%v, want true/false", campaigns.completed, campaigns.insuranceTriggered)
	}
	if !tx.committed {
		t.Error("distributed path must commit")
	}
	if len(pub.published) != 1 || pub.published[0].Payload["outcome"] != string(distribution.OutcomeDistributed) {
		t.Errorf("expected one distributed event, got %+v", pub.published)
	}
}

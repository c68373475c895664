package transactions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
)

func strPtr(s string) *string { return &s }

func record(recordType string, createdAt time.Time, txHash *string) LedgerRecord {
	causeID := uuid.New()
	return LedgerRecord{
		ID:           uuid.New(),
		Type:         recordType,
		Status:       StatusCompleted,
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		TxHash:       txHash,
		CauseID:      &causeID,
		CauseName:    "Clean Water",
		Counterparty: "donor-42",
		CreatedAt:    createdAt,
	}
}

func chainEvent(hash string, timestamp time.Time) ledger.TransferEvent {
	return ledger.TransferEvent{
		Hash:      hash,
		From:      "GDONORWALLET",
		To:        "GCAUSEWALLET",
		Amount:    decimal.NewFromInt(250),
		Timestamp: timestamp,
		Type:      ledger.EventPaymentReceived,
	}
}

func TestReconcileDedupsByHashLedgerServiceWins(t *testing.T) {
	now := time.Now()
	shared := "abcd1234"

	records := []LedgerRecord{record(TypeDonation, now.Add(-time.Hour), strPtr(shared))}
	events := []ledger.TransferEvent{
		chainEvent(shared, now.Add(-time.Hour)),
		chainEvent("other9999", now),
	}

	merged := Reconcile(records, events)

	require.Len(t, merged, 2)
	var sharedEntries []UnifiedTransactionEntry
	for _, e := range merged {
		if e.TxHash != nil && *e.TxHash == shared {
			sharedEntries = append(sharedEntries, e)
		}
	}
	require.Len(t, sharedEntries, 1)
	// the surviving entry carries the ledger-service metadata
	assert.Equal(t, SourceLedgerService, sharedEntries[0].Source)
	assert.Equal(t, "donor-42", sharedEntries[0].Counterparty)
	assert.Equal(t, "Clean Water", sharedEntries[0].CauseName)
}

func TestReconcileKeepsUnmirroredChainEntry(t *testing.T) {
	merged := Reconcile(nil, []ledger.TransferEvent{chainEvent("feed0000", time.Now())})

	require.Len(t, merged, 1)
	assert.Equal(t, SourceDistributedLedger, merged[0].Source)
	assert.Equal(t, StatusCompleted, merged[0].Status)
	assert.Equal(t, TypeDonation, merged[0].Type)
	assert.Equal(t, "XLM", merged[0].Currency)
}

func TestReconcileOutgoingChainEntryIsMilestonePayment(t *testing.T) {
	event := ledger.TransferEvent{
		Hash:      "beef0001",
		From:      "GCAUSEWALLET",
		To:        "GRECIPIENT",
		Amount:    decimal.NewFromInt(50),
		Timestamp: time.Now(),
		Type:      ledger.EventPaymentSent,
	}

	merged := Reconcile(nil, []ledger.TransferEvent{event})

	require.Len(t, merged, 1)
	assert.Equal(t, TypeMilestonePayment, merged[0].Type)
	assert.Equal(t, "GRECIPIENT", merged[0].Counterparty)
}

func TestReconcileNoHashNeverDeduped(t *testing.T) {
	now := time.Now()
	// two fiat records with identical amounts and no hash stay distinct
	records := []LedgerRecord{
		record(TypeDonation, now, nil),
		record(TypeDonation, now, nil),
	}

	merged := Reconcile(records, nil)

	assert.Len(t, merged, 2)
}

func TestReconcileMalformedTimestampFallsBackToNow(t *testing.T) {
	before := time.Now()
	merged := Reconcile(nil, []ledger.TransferEvent{chainEvent("aaaa5555", time.Time{})})

	require.Len(t, merged, 1)
	assert.False(t, merged[0].CreatedAt.IsZero())
	assert.False(t, merged[0].CreatedAt.Before(before))
}

func TestReconcileIdentityIsHashNotAmount(t *testing.T) {
	now := time.Now()
	shared := "cafe7777"
	// same hash, wildly different amounts and currencies: still one entry
	rec := record(TypeDonation, now, strPtr(shared))
	rec.Amount = decimal.NewFromInt(12)
	rec.Currency = "USD"
	event := chainEvent(shared, now)
	event.Amount = decimal.RequireFromString("87.5")

	merged := Reconcile([]LedgerRecord{rec}, []ledger.TransferEvent{event})

	require.Len(t, merged, 1)
	assert.True(t, merged[0].Amount.Equal(decimal.NewFromInt(12)))
}

func TestFilterByTypeAfterMerge(t *testing.T) {
	now := time.Now()
	records := []LedgerRecord{
		record(TypeDonation, now.Add(-1*time.Minute), nil),
		record(TypeDonation, now.Add(-2*time.Minute), nil),
		record(TypeTaskFunding, now.Add(-3*time.Minute), nil),
		record(TypeTaskFunding, now.Add(-4*time.Minute), nil),
	}
	events := []ledger.TransferEvent{chainEvent("dddd1111", now)} // normalizes to a donation

	merged := Reconcile(records, events)
	filtered := ApplyFilter(merged, Filter{Type: TypeDonation})

	require.Len(t, filtered, 3)
	for i := 1; i < len(filtered); i++ {
		assert.False(t, filtered[i-1].CreatedAt.Before(filtered[i].CreatedAt), "expected newest-first order")
	}
}

func TestFilterByDateIntervalIsClosed(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []LedgerRecord{
		record(TypeDonation, base.Add(-48*time.Hour), nil),
		record(TypeDonation, base, nil),
		record(TypeDonation, base.Add(48*time.Hour), nil),
	}

	from := base
	to := base.Add(24 * time.Hour)
	filtered := ApplyFilter(Reconcile(records, nil), Filter{From: &from, To: &to})

	require.Len(t, filtered, 1)
	assert.Equal(t, base, filtered[0].CreatedAt)
}

func TestFilterFreeTextMatchesAcrossSources(t *testing.T) {
	now := time.Now()
	rec := record(TypeDonation, now, nil)
	events := []ledger.TransferEvent{chainEvent("feedface01", now)}

	merged := Reconcile([]LedgerRecord{rec}, events)

	byCause := ApplyFilter(merged, Filter{Search: "clean water"})
	require.Len(t, byCause, 1)
	assert.Equal(t, SourceLedgerService, byCause[0].Source)

	byHash := ApplyFilter(merged, Filter{Search: "FEEDFACE"})
	require.Len(t, byHash, 1)
	assert.Equal(t, SourceDistributedLedger, byHash[0].Source)
}

func TestSortByAmount(t *testing.T) {
	now := time.Now()
	small := record(TypeDonation, now, nil)
	small.Amount = decimal.NewFromInt(5)
	big := record(TypeDonation, now.Add(-time.Hour), nil)
	big.Amount = decimal.NewFromInt(900)

	merged := Reconcile([]LedgerRecord{small, big}, nil)
	SortEntries(merged, SortAmount)

	require.Len(t, merged, 2)
	assert.True(t, merged[0].Amount.Equal(decimal.NewFromInt(900)))
}

func TestReconcileDefaultSortNewestFirst(t *testing.T) {
	now := time.Now()
	records := []LedgerRecord{
		record(TypeDonation, now.Add(-3*time.Hour), nil),
		record(TypeDonation, now.Add(-1*time.Hour), nil),
	}
	events := []ledger.TransferEvent{chainEvent("aa11", now)}

	merged := Reconcile(records, events)

	require.Len(t, merged, 3)
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i-1].CreatedAt.Before(merged[i].CreatedAt))
	}
}

package transactions

import (
	"sort"
	"strings"
	"time"

	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
)

// Sort orders for the unified view.
const (
	SortNewestFirst = "newest_first"
	SortAmount      = "amount"
)

// Filter narrows the merged transaction set. It is applied after
// deduplication and before sorting, so it behaves identically regardless of
// which source an entry came from. From/To form a closed interval.
type Filter struct {
	Type   string
	Status string
	Search string
	From   *time.Time
	To     *time.Time
}

// Reconcile merges the authoritative ledger-service records with the
// distributed-ledger transfer events into one deduplicated view, sorted
// newest first. Two entries are the same real-world transfer iff they share
// a non-null transfer hash; on a collision the ledger-service entry wins,
// since it carries the business metadata. Amount equality is never used for
// identity: the two sources need not even share a currency.
func Reconcile(records []LedgerRecord, events []ledger.TransferEvent) []UnifiedTransactionEntry {
	merged := make([]UnifiedTransactionEntry, 0, len(records)+len(events))
	seenHashes := make(map[string]struct{})

	for _, record := range records {
		entry := normalizeRecord(record)
		if entry.TxHash != nil && *entry.TxHash != "" {
			seenHashes[*entry.TxHash] = struct{}{}
		}
		merged = append(merged, entry)
	}

	for _, event := range events {
		if event.Hash != "" {
			if _, dup := seenHashes[event.Hash]; dup {
				continue
			}
			// a chain entry never collides with another chain entry twice
			seenHashes[event.Hash] = struct{}{}
		}
		merged = append(merged, normalizeEvent(event))
	}

	SortEntries(merged, SortNewestFirst)
	return merged
}

func normalizeRecord(record LedgerRecord) UnifiedTransactionEntry {
	return UnifiedTransactionEntry{
		ID:           record.ID.String(),
		Source:       SourceLedgerService,
		Type:         record.Type,
		Amount:       record.Amount,
		Currency:     record.Currency,
		Status:       record.Status,
		CreatedAt:    record.CreatedAt,
		CauseID:      record.CauseID,
		CauseName:    record.CauseName,
		TaskID:       record.TaskID,
		Counterparty: record.Counterparty,
		TxHash:       record.TxHash,
	}
}

func normalizeEvent(event ledger.TransferEvent) UnifiedTransactionEntry {
	entryType := TypeDonation
	if event.Type == ledger.EventPaymentSent {
		entryType = TypeMilestonePayment
	}

	createdAt := event.Timestamp
	if createdAt.IsZero() {
		// malformed chain timestamp: place conservatively rather than drop
		createdAt = time.Now()
	}

	hash := event.Hash
	var txHash *string
	if hash != "" {
		txHash = &hash
	}

	counterparty := event.From
	if event.Type == ledger.EventPaymentSent {
		counterparty = event.To
	}

	return UnifiedTransactionEntry{
		ID:           event.Hash,
		Source:       SourceDistributedLedger,
		Type:         entryType,
		Amount:       event.Amount,
		Currency:     "XLM",
		Status:       StatusCompleted, // the chain only surfaces settled transfers
		CreatedAt:    createdAt,
		Counterparty: counterparty,
		TxHash:       txHash,
	}
}

// ApplyFilter returns the entries matching every set criterion.
func ApplyFilter(entries []UnifiedTransactionEntry, filter Filter) []UnifiedTransactionEntry {
	out := make([]UnifiedTransactionEntry, 0, len(entries))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, entry := range entries {
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.CreatedAt.After(*filter.To) {
			continue
		}
		if search != "" && !matchesSearch(entry, search) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func matchesSearch(entry UnifiedTransactionEntry, search string) bool {
	if strings.Contains(strings.ToLower(entry.ID), search) {
		return true
	}
	if entry.TxHash != nil && strings.Contains(strings.ToLower(*entry.TxHash), search) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Counterparty), search) {
		return true
	}
	return strings.Contains(strings.ToLower(entry.CauseName), search)
}

// SortEntries orders entries in place. The default is newest first; the
// amount order is largest first with creation time as tiebreaker.
func SortEntries(entries []UnifiedTransactionEntry, order string) {
	switch order {
	case SortAmount:
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].Amount.Equal(entries[j].Amount) {
				return entries[i].Amount.GreaterThan(entries[j].Amount)
			}
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		})
	}
}

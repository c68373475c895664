package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"
)

// StellarGateway implements Gateway over a Horizon server. The funding
// account holds the platform's collected balances; releases are payments
// from it to the destination wallet on file.
type StellarGateway struct {
	horizonClient     *horizonclient.Client
	fundingKeyPair    *keypair.Full
	networkPassphrase string
}

// StellarGatewayConfig contains Stellar network configuration
type StellarGatewayConfig struct {
	HorizonURL       string `json:"horizon_url"`
	Network          string `json:"network"` // "testnet" or "public"
	FundingSecretKey string `json:"funding_secret_key"`
}

// NewStellarGateway creates a new Stellar-backed gateway
func NewStellarGateway(config *StellarGatewayConfig) (*StellarGateway, error) {
	horizonClient := horizonclient.DefaultTestNetClient
	if config.Network == "public" {
		horizonClient = horizonclient.DefaultPublicNetClient
	} else if config.HorizonURL != "" {
		horizonClient = &horizonclient.Client{HorizonURL: config.HorizonURL}
	}

	fundingKeyPair, err := keypair.ParseFull(config.FundingSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse funding key pair: %w", err)
	}

	networkPassphrase := network.TestNetworkPassphrase
	if config.Network == "public" {
		networkPassphrase = network.PublicNetworkPassphrase
	}

	return &StellarGateway{
		horizonClient:     horizonClient,
		fundingKeyPair:    fundingKeyPair,
		networkPassphrase: networkPassphrase,
	}, nil
}

// SubmitTransfer submits a native-asset payment and returns its transaction
// hash. An error after Horizon accepted the envelope does NOT mean the
// transfer failed; callers must re-query via GetTransferOutcome before
// retrying.
func (g *StellarGateway) SubmitTransfer(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error) {
	if _, err := keypair.ParseAddress(destination); err != nil {
		return "", fmt.Errorf("invalid destination address: %w", err)
	}

	sourceAccount, err := g.horizonClient.AccountDetail(horizonclient.AccountRequest{
		AccountID: g.fundingKeyPair.Address(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get funding account: %w", err)
	}

	payment := txnbuild.Payment{
		Destination: destination,
		Amount:      amount.StringFixed(7),
		Asset:       txnbuild.NativeAsset{},
	}

	params := txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{&payment},
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
	}
	if memo != "" {
		// MemoText caps at 28 bytes
		if len(memo) > 28 {
			memo = memo[:28]
		}
		params.Memo = txnbuild.MemoText(memo)
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	tx, err = tx.Sign(g.networkPassphrase, g.fundingKeyPair)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	txResp, err := g.horizonClient.SubmitTransaction(tx)
	if err != nil {
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	if !txResp.Successful {
		return "", fmt.Errorf("transaction %s rejected by network", txResp.Hash)
	}

	return txResp.Hash, nil
}

// GetTransferHistory enumerates settled payments touching the account,
// newest first. Failed operations are skipped; the history only surfaces
// settled transfers.
func (g *StellarGateway) GetTransferHistory(ctx context.Context, account string) ([]TransferEvent, error) {
	page, err := g.horizonClient.Payments(horizonclient.OperationRequest{
		ForAccount: account,
		Order:      horizonclient.OrderDesc,
		Limit:      200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment history: %w", err)
	}

	events := make([]TransferEvent, 0, len(page.Embedded.Records))
	for _, record := range page.Embedded.Records {
		payment, ok := record.(operations.Payment)
		if !ok {
			continue
		}
		if !payment.TransactionSuccessful {
			continue
		}

		amount, err := decimal.NewFromString(payment.Amount)
		if err != nil {
			continue
		}

		eventType := EventPaymentReceived
		if strings.EqualFold(payment.From, account) {
			eventType = EventPaymentSent
		}

		events = append(events, TransferEvent{
			Hash:      payment.GetTransactionHash(),
			From:      payment.From,
			To:        payment.To,
			Amount:    amount,
			Timestamp: payment.LedgerCloseTime,
			Type:      eventType,
		})
	}

	return events, nil
}

// GetTransferOutcome re-queries a transfer by hash. Used by release callers
// to recover from a timed-out submission without double-spending.
func (g *StellarGateway) GetTransferOutcome(ctx context.Context, hash string) (*TransferOutcome, error) {
	txResp, err := g.horizonClient.TransactionDetail(hash)
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return &TransferOutcome{Hash: hash, Found: false}, nil
		}
		return nil, fmt.Errorf("failed to query transaction %s: %w", hash, err)
	}
	return &TransferOutcome{
		Hash:       txResp.Hash,
		Found:      true,
		Successful: txResp.Successful,
	}, nil
}

package t212sync

import (
	"fmt"

	"github.com/etnz/t212sync/date"
)

// Action labels of the broker export that get a dedicated treatment.
const (
	ActionDeposit          = "Deposit"
	ActionCardDebit        = "Card debit"
	ActionCardCredit       = "Card credit"
	ActionSpendingCashback = "Spending cashback"
	ActionInterestOnCash   = "Interest on cash"
	ActionLendingInterest  = "Lending interest"
	ActionMarketBuy        = "Market buy"
	ActionMarketSell       = "Market sell"
	ActionDividend         = "Dividend (Dividend)"
)

// rule completes a transaction from its row. The transaction already carries the
// account, date, amount, id and category when a rule is applied.
type rule func(r Row, tx *Transaction)

// rules maps an action label (exact, case-sensitive match) to its rule.
// Labels absent from the table produce a transaction with no notes and no payee.
var rules = map[string]rule{
	ActionDeposit:          depositRule,
	ActionCardDebit:        cardRule,
	ActionCardCredit:       cardRule,
	ActionSpendingCashback: actionRule,
	ActionInterestOnCash:   actionRule,
	ActionLendingInterest:  lendingRule,
	ActionMarketBuy:        buyRule,
	ActionMarketSell:       tradeRule,
	ActionDividend:         dividendRule,
}

func depositRule(r Row, tx *Transaction) {
	tx.Notes = fmt.Sprintf("%s (%s)", r.Get(ColAction), r.Get(ColNotes))
}

func cardRule(r Row, tx *Transaction) {
	merchant := r.Get(ColMerchantName)
	tx.ImportedPayee = merchant
	tx.Notes = merchant
	if notes := r.Get(ColNotes); notes != "" {
		tx.Notes = fmt.Sprintf("%s (%s)", merchant, notes)
	}
}

func actionRule(r Row, tx *Transaction) { tx.Notes = r.Get(ColAction) }

func lendingRule(r Row, tx *Transaction) { tx.Notes = r.Get(ColNotes) }

// security returns "Name (Ticker)".
func security(r Row) string { return fmt.Sprintf("%s (%s)", r.Get(ColName), r.Get(ColTicker)) }

func tradeRule(r Row, tx *Transaction) {
	tx.Notes = fmt.Sprintf("%s (%s)", r.Get(ColAction), r.Get(ColTicker))
	tx.ImportedPayee = security(r)
}

// buyRule is tradeRule for cash leaving the account: a buy is always an outflow,
// whatever the sign of the exported total.
func buyRule(r Row, tx *Transaction) {
	tradeRule(r, tx)
	tx.Amount = -tx.Amount.Abs()
}

func dividendRule(r Row, tx *Transaction) {
	tx.Notes = r.Get(ColAction)
	tx.ImportedPayee = security(r)
}

// Normalize converts broker rows into ledger transactions for the given account.
//
// The output has one transaction per row, in the same order. Normalize is a pure
// function of its arguments.
func Normalize(rows []Row, accountID string) ([]Transaction, error) {
	if len(rows) == 0 {
		return []Transaction{}, nil
	}
	if accountID == "" {
		return nil, ErrMissingAccountID
	}

	txs := make([]Transaction, 0, len(rows))
	for i, r := range rows {
		tx, err := normalizeRow(r, accountID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// normalizeRow converts a single row.
func normalizeRow(r Row, accountID string) (Transaction, error) {
	id := r.Get(ColID)
	if id == "" {
		return Transaction{}, fmt.Errorf("%w: missing %s", ErrMalformedExport, ColID)
	}
	on, err := r.Time()
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	amount, err := ParseAmount(r.Get(ColTotal))
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: row %q: %v", ErrMalformedExport, id, err)
	}

	tx := Transaction{
		Account:    accountID,
		Date:       date.Of(on),
		Amount:     amount,
		Category:   r.Get(ColMerchantCategory),
		ImportedID: id,
		Cleared:    true,
	}
	if apply, ok := rules[r.Get(ColAction)]; ok {
		apply(r, &tx)
	}
	return tx, nil
}

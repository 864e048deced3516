package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type Response struct {
	ID         int64            `json:"id"`
	CategoryID int64            `json:"category_id"`
	Category   string           `json:"category"`
	Amount     decimal.Decimal  `json:"amount"`
	Kind       transaction.Kind `json:"type"`
	Timestamp  string           `json:"timestamp"`
	Label      *string          `json:"label,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  *string          `json:"updated_at,omitempty"`
}

func ToResponse(tx *transaction.Transaction) Response {
	resp := Response{
		ID:         tx.ID,
		CategoryID: tx.CategoryID,
		Category:   tx.Category,
		Amount:     tx.Amount,
		Kind:       tx.Kind,
		Timestamp:  tx.Timestamp.Format(period.TimestampLayout),
		Label:      tx.Label,
		CreatedAt:  tx.CreatedAt.Format(period.TimestampLayout),
	}

	if tx.UpdatedAt != nil {
		resp.UpdatedAt = new(tx.UpdatedAt.Format(period.TimestampLayout))
	}

	return resp
}

// ToResponseList is shared with the report and import handlers.
func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

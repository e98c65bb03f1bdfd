package budget

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

// TransferInput describes a requested budget reallocation. A nil endpoint
// means the Available to Budget pool; it is resolved to the system
// category's id before the transfer is persisted, so every stored transfer
// has two concrete endpoints and pool aggregates can key on the system
// category id.
type TransferInput struct {
	From   *int64
	To     *int64
	Date   string
	Memo   string
	Amount decimal.Decimal
}

// CreateTransfer validates and appends a category transfer. Validation
// failures leave no ledger row behind.
func (e *Engine) CreateTransfer(ctx context.Context, in TransferInput) (*model.CategoryTransfer, error) {
	from, to, err := e.resolveEndpoints(ctx, in)
	if err != nil {
		return nil, err
	}

	return e.store.CreateTransfer(ctx, &model.CategoryTransfer{
		Date:           in.Date,
		FromCategoryID: from,
		ToCategoryID:   to,
		Amount:         in.Amount,
		Memo:           in.Memo,
	})
}

// UpdateTransfer replaces an existing transfer's fields after running the
// same validation as creation.
func (e *Engine) UpdateTransfer(ctx context.Context, id int64, in TransferInput) (*model.CategoryTransfer, error) {
	if _, err := e.store.GetTransferByID(ctx, id); err != nil {
		return nil, err
	}

	from, to, err := e.resolveEndpoints(ctx, in)
	if err != nil {
		return nil, err
	}

	update := model.CategoryTransferUpdate{
		Date:           &in.Date,
		FromCategoryID: &from,
		ToCategoryID:   &to,
		Amount:         &in.Amount,
		Memo:           &in.Memo,
	}
	if err := e.store.UpdateTransfer(ctx, id, update); err != nil {
		return nil, err
	}
	return e.store.GetTransferByID(ctx, id)
}

// DeleteTransfer removes a transfer from the ledger. Deletion is
// unconditional; already-materialized monthly snapshots are not recomputed.
func (e *Engine) DeleteTransfer(ctx context.Context, id int64) error {
	return e.store.DeleteTransfer(ctx, id)
}

// resolveEndpoints validates a transfer request and resolves nil endpoints
// to the Available to Budget system category.
func (e *Engine) resolveEndpoints(ctx context.Context, in TransferInput) (from, to int64, err error) {
	if !in.Amount.IsPositive() {
		return 0, 0, common.Validationf("transfer amount must be positive")
	}
	if in.From == nil && in.To == nil {
		return 0, 0, common.Validationf("transfer requires at least one category endpoint")
	}
	if in.From != nil && in.To != nil && *in.From == *in.To {
		return 0, 0, common.Validationf("transfer source and destination must differ")
	}
	if !model.ValidDate(in.Date) {
		return 0, 0, common.Validationf("transfer date %q is not a valid YYYY-MM-DD date", in.Date)
	}

	from, err = e.resolveEndpoint(ctx, in.From)
	if err != nil {
		return 0, 0, err
	}
	to, err = e.resolveEndpoint(ctx, in.To)
	if err != nil {
		return 0, 0, err
	}
	if from == to {
		return 0, 0, common.Validationf("transfer source and destination must differ")
	}
	return from, to, nil
}

func (e *Engine) resolveEndpoint(ctx context.Context, id *int64) (int64, error) {
	if id == nil {
		atb, err := e.atbCategory(ctx)
		if err != nil {
			return 0, err
		}
		if atb == nil {
			return 0, common.NotFoundf("Available to Budget category")
		}
		return atb.ID, nil
	}

	if _, err := e.store.GetCategoryByID(ctx, *id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, common.Validationf("unknown category %d", *id)
		}
		return 0, err
	}
	return *id, nil
}

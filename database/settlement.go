package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

// SettleDiscountCode drives a discount code into its terminal state inside a
// single transaction: the code is deactivated and its owed commission is
// recorded together, so a crash between the two steps cannot leave one
// without the other. A code that is already inactive is a no-op success, which
// is what makes queue redelivery of a settlement job safe.
//
// The boolean return is true when this call performed the settlement and
// false when the code was already settled.
func (d Datasource) SettleDiscountCode(ctx context.Context, codeID string) (*model.Commission, bool, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin settlement transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
		SELECT `+discountCodeColumns+`
		FROM discount_codes
		WHERE code_id = $1
		FOR UPDATE
	`, codeID)
	code, err := scanDiscountCode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Discount code with ID '%s' not found", codeID), err)
		}
		return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve discount code for settlement", err)
	}

	if !code.IsActive {
		commission, err := d.getCommissionTx(ctx, tx, codeID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit settlement transaction", err)
		}
		return commission, false, nil
	}

	// An influencer code without a commission shape can never settle; retrying
	// will not fix its configuration.
	if code.Kind == model.CodeKindInfluencer && !code.HasCommission() {
		return nil, false, apierror.NewAPIError(apierror.ErrPermanent, fmt.Sprintf("Discount code '%s' has no commission configuration", codeID), nil)
	}

	var commission *model.Commission
	if code.HasCommission() {
		var basis int64
		if code.CommissionType == model.ValuePercentage {
			err = tx.QueryRowContext(ctx, `
				SELECT COALESCE(SUM(total_amount), 0)
				FROM orders
				WHERE discount_code_id = $1 AND status = $2
			`, codeID, model.OrderStatusPaid).Scan(&basis)
			if err != nil {
				return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to compute attributed revenue", err)
			}
		} else {
			basis = code.UsedCount
		}

		commission = &model.Commission{
			CommissionID: model.GenerateUUIDWithSuffix("cms"),
			CodeID:       codeID,
			Kind:         code.CommissionType,
			Basis:        basis,
			Amount:       code.CommissionAmount(basis),
			CreatedAt:    time.Now(),
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO commissions(commission_id,code_id,kind,basis,amount,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			commission.CommissionID, commission.CodeID, commission.Kind, commission.Basis, commission.Amount, commission.CreatedAt,
		)
		if err != nil {
			return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record commission", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE discount_codes
		SET is_active = FALSE
		WHERE code_id = $1
	`, codeID)
	if err != nil {
		return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to deactivate discount code", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit settlement transaction", err)
	}
	return commission, true, nil
}

func (d Datasource) getCommissionTx(ctx context.Context, tx *sql.Tx, codeID string) (*model.Commission, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT commission_id, code_id, kind, basis, amount, created_at
		FROM commissions
		WHERE code_id = $1
	`, codeID)

	commission := &model.Commission{}
	err := row.Scan(&commission.CommissionID, &commission.CodeID, &commission.Kind, &commission.Basis, &commission.Amount, &commission.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve commission", err)
	}
	return commission, nil
}

func (d Datasource) GetCommissionByCodeID(ctx context.Context, codeID string) (*model.Commission, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT commission_id, code_id, kind, basis, amount, created_at
		FROM commissions
		WHERE code_id = $1
	`, codeID)

	commission := &model.Commission{}
	err := row.Scan(&commission.CommissionID, &commission.CodeID, &commission.Kind, &commission.Basis, &commission.Amount, &commission.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Commission for code '%s' not found", codeID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve commission", err)
	}
	return commission, nil
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"

	_ "github.com/lib/pq"
)

const discountCodeColumns = `code_id, code, kind, discount_type, discount_value, commission_type, commission_value, min_purchase, max_uses, used_count, is_active, lead_id, valid_from, valid_until, created_at, meta_data`

func scanDiscountCode(row interface{ Scan(...interface{}) error }) (*model.DiscountCode, error) {
	code := &model.DiscountCode{}
	var commissionType, leadID sql.NullString
	var commissionValue decimal.NullDecimal
	var minPurchase, maxUses sql.NullInt64
	var validUntil sql.NullTime
	var metaDataJSON []byte

	err := row.Scan(&code.CodeID, &code.Code, &code.Kind, &code.DiscountType, &code.DiscountValue,
		&commissionType, &commissionValue, &minPurchase, &maxUses, &code.UsedCount, &code.IsActive,
		&leadID, &code.ValidFrom, &validUntil, &code.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}

	if commissionType.Valid {
		code.CommissionType = commissionType.String
	}
	if commissionValue.Valid {
		code.CommissionValue = commissionValue.Decimal
	}
	if minPurchase.Valid {
		code.MinPurchase = &minPurchase.Int64
	}
	if maxUses.Valid {
		code.MaxUses = &maxUses.Int64
	}
	if leadID.Valid {
		code.LeadID = leadID.String
	}
	if validUntil.Valid {
		t := validUntil.Time
		code.ValidUntil = &t
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &code.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return code, nil
}

func (d Datasource) CreateDiscountCode(ctx context.Context, code *model.DiscountCode) (*model.DiscountCode, error) {
	metaDataJSON, err := json.Marshal(code.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	var commissionType, leadID interface{}
	if code.CommissionType != "" {
		commissionType = code.CommissionType
	}
	if code.LeadID != "" {
		leadID = code.LeadID
	}
	var commissionValue interface{}
	if code.HasCommission() {
		commissionValue = code.CommissionValue
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO discount_codes(code_id,code,kind,discount_type,discount_value,commission_type,commission_value,min_purchase,max_uses,used_count,is_active,lead_id,valid_from,valid_until,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		code.CodeID, code.Code, code.Kind, code.DiscountType, code.DiscountValue, commissionType, commissionValue,
		code.MinPurchase, code.MaxUses, code.UsedCount, code.IsActive, leadID, code.ValidFrom, code.ValidUntil,
		code.CreatedAt, metaDataJSON,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create discount code", err)
	}

	return code, nil
}

func (d Datasource) GetDiscountCodeByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+discountCodeColumns+`
		FROM discount_codes
		WHERE code = $1
	`, code)

	result, err := scanDiscountCode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Discount code '%s' not found", code), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve discount code", err)
	}
	return result, nil
}

func (d Datasource) GetDiscountCodeByID(ctx context.Context, codeID string) (*model.DiscountCode, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+discountCodeColumns+`
		FROM discount_codes
		WHERE code_id = $1
	`, codeID)

	result, err := scanDiscountCode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Discount code with ID '%s' not found", codeID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve discount code", err)
	}
	return result, nil
}

// GetExpiredActiveCodes returns still-active codes whose validity window
// closed before the cutoff, bounded by limit. The cutoff is the start of the
// current day in the business time zone: a code dated any earlier day has
// passed its end-of-day boundary.
func (d Datasource) GetExpiredActiveCodes(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+discountCodeColumns+`
		FROM discount_codes
		WHERE is_active = TRUE AND valid_until IS NOT NULL AND valid_until < $1
		ORDER BY valid_until ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve expired discount codes", err)
	}
	defer rows.Close()

	var codes []*model.DiscountCode
	for rows.Next() {
		code, err := scanDiscountCode(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan discount code data", err)
		}
		codes = append(codes, code)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over discount codes", err)
	}

	return codes, nil
}

func (d Datasource) GetAllDiscountCodes(ctx context.Context) ([]*model.DiscountCode, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+discountCodeColumns+`
		FROM discount_codes
		ORDER BY created_at DESC
		LIMIT 20
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve discount codes", err)
	}
	defer rows.Close()

	codes := []*model.DiscountCode{}
	for rows.Next() {
		code, err := scanDiscountCode(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan discount code data", err)
		}
		codes = append(codes, code)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over discount codes", err)
	}

	return codes, nil
}

// IncrementDiscountCodeUsage performs the atomic check-and-increment on a
// code's usage counter. The guard in the WHERE clause is what makes
// concurrent redemptions safe: when only one slot remains, exactly one of
// two racing requests matches the row. A code whose last slot is consumed is
// deactivated in the same statement.
//
// Returns the counter after the increment and false when the guard rejected
// the update (exhausted or concurrently deactivated).
func (d Datasource) IncrementDiscountCodeUsage(ctx context.Context, code string) (int64, bool, error) {
	var usedCount int64
	err := d.Conn.QueryRowContext(ctx, `
		UPDATE discount_codes
		SET used_count = used_count + 1,
		    is_active = CASE WHEN max_uses IS NOT NULL AND used_count + 1 >= max_uses THEN FALSE ELSE is_active END
		WHERE code = $1
		  AND is_active = TRUE
		  AND (max_uses IS NULL OR used_count < max_uses)
		RETURNING used_count
	`, code).Scan(&usedCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to increment discount code usage", err)
	}
	return usedCount, true, nil
}

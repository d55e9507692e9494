package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

func (d Datasource) GetPaymentByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT payment_id, order_id, provider_ref, status, amount, raw_payload, created_at, updated_at
		FROM payments
		WHERE provider_ref = $1
	`, providerRef)

	payment := &model.Payment{}
	var rawPayload []byte
	err := row.Scan(&payment.PaymentID, &payment.OrderID, &payment.ProviderRef, &payment.Status, &payment.Amount, &rawPayload, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payment with provider reference '%s' not found", providerRef), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment", err)
	}
	payment.RawPayload = rawPayload
	return payment, nil
}

// ApplyPaymentEvent reconciles one gateway delivery against internal state
// inside a single transaction. The order row is locked first, which
// serializes concurrent deliveries for the same order; stale or duplicate
// events are detected against the recorded payment's status precedence and
// acknowledged without side effects.
//
// On the first transition into PAID the discount usage attribution is applied
// in the same transaction, so a crash cannot acknowledge the event while
// losing the attribution.
func (d Datasource) ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent, status string) (*model.PaymentOutcome, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin reconciliation transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
		SELECT order_id, discount_code_id, discount_amount, discount_redeemed, total_amount, status, created_at, updated_at, meta_data
		FROM orders
		WHERE order_id = $1
		FOR UPDATE
	`, event.ExternalReference)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Order with reference '%s' not found", event.ExternalReference), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to resolve order for payment event", err)
	}

	outcome := &model.PaymentOutcome{OrderID: order.OrderID, CodeID: order.DiscountCodeID}

	// Existing payment row for this provider reference decides whether this
	// delivery is new information or a replay.
	var recordedStatus sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM payments WHERE provider_ref = $1 FOR UPDATE
	`, event.ProviderRef).Scan(&recordedStatus)
	if err != nil && err != sql.ErrNoRows {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check recorded payment status", err)
	}

	if recordedStatus.Valid && model.PaymentStatusPrecedence(status) <= model.PaymentStatusPrecedence(recordedStatus.String) {
		outcome.Duplicate = true
		if err := tx.Commit(); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit reconciliation transaction", err)
		}
		return outcome, nil
	}

	now := time.Now()
	payment := &model.Payment{
		PaymentID:   model.GenerateUUIDWithSuffix("pay"),
		OrderID:     order.OrderID,
		ProviderRef: event.ProviderRef,
		Status:      status,
		Amount:      event.Amount,
		RawPayload:  event.RawPayload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rawPayload := []byte(event.RawPayload)
	if len(rawPayload) == 0 {
		rawPayload = []byte("{}")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments(payment_id,order_id,provider_ref,status,amount,raw_payload,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (provider_ref) DO UPDATE SET status = EXCLUDED.status, raw_payload = EXCLUDED.raw_payload, updated_at = EXCLUDED.updated_at
	`, payment.PaymentID, payment.OrderID, payment.ProviderRef, payment.Status, payment.Amount, rawPayload, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record payment", err)
	}
	outcome.Payment = payment

	// Drive the order transition the payment status maps to. A transition the
	// table rejects (e.g. APPROVED after the order expired) records the
	// payment but leaves the order alone.
	if to := model.OrderStatusForPayment(status); to != "" && order.Status != to {
		if model.CanTransitionOrder(order.Status, to) {
			_, err = tx.ExecContext(ctx, `
				UPDATE orders SET status = $2, updated_at = NOW() WHERE order_id = $1
			`, order.OrderID, to)
			if err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update order status", err)
			}
			outcome.OrderTransitioned = true
			outcome.FirstPaid = to == model.OrderStatusPaid
		} else {
			logrus.Infof("Payment event for order %s maps to %s but order is %s, leaving order untouched",
				order.OrderID, to, order.Status)
		}
	}

	if outcome.FirstPaid && order.DiscountCodeID != "" {
		if !order.DiscountRedeemed {
			var usedCount int64
			err = tx.QueryRowContext(ctx, `
				UPDATE discount_codes
				SET used_count = used_count + 1,
				    is_active = CASE WHEN max_uses IS NOT NULL AND used_count + 1 >= max_uses THEN FALSE ELSE is_active END
				WHERE code_id = $1
				  AND is_active = TRUE
				  AND (max_uses IS NULL OR used_count < max_uses)
				RETURNING used_count
			`, order.DiscountCodeID).Scan(&usedCount)
			if err != nil && err != sql.ErrNoRows {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to attribute discount code usage", err)
			}
			if err == sql.ErrNoRows {
				logrus.Warnf("Discount usage attribution skipped for order %s: code %s no longer accepts uses", order.OrderID, order.DiscountCodeID)
			}
			_, err = tx.ExecContext(ctx, `
				UPDATE orders SET discount_redeemed = TRUE WHERE order_id = $1
			`, order.OrderID)
			if err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark discount attribution", err)
			}
		}

		var kind string
		var leadID sql.NullString
		err = tx.QueryRowContext(ctx, `
			SELECT kind, lead_id FROM discount_codes WHERE code_id = $1
		`, order.DiscountCodeID).Scan(&kind, &leadID)
		if err != nil && err != sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve discount code for order", err)
		}
		outcome.CodeKind = kind
		if leadID.Valid {
			outcome.LeadID = leadID.String
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit reconciliation transaction", err)
	}
	return outcome, nil
}

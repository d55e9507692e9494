/*
Copyright 2024 Veld Commerce Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

func TestSettleDiscountCode_PercentageCommission(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	expired := time.Now().Add(-48 * time.Hour)
	codeRow := discountCodeRows().AddRow(
		"code_123", "SUMMER10", model.CodeKindInfluencer, model.ValuePercentage, "10",
		model.ValuePercentage, "5", nil, nil,
		int64(40), true, nil, expired.Add(-30*24*time.Hour), expired,
		expired.Add(-30*24*time.Hour), nil,
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("code_123").
		WillReturnRows(codeRow)
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(total_amount), 0)")).
		WithArgs("code_123", model.OrderStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(200000)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO commissions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE discount_codes")).
		WithArgs("code_123").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	commission, settled, err := ds.SettleDiscountCode(context.Background(), "code_123")
	assert.NoError(t, err)
	assert.True(t, settled)
	assert.NotNil(t, commission)
	assert.Equal(t, int64(200000), commission.Basis)
	// 5% of the attributed revenue.
	assert.Equal(t, int64(10000), commission.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleDiscountCode_AlreadySettledIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	expired := time.Now().Add(-48 * time.Hour)
	codeRow := discountCodeRows().AddRow(
		"code_123", "SUMMER10", model.CodeKindInfluencer, model.ValuePercentage, "10",
		model.ValuePercentage, "5", nil, nil,
		int64(40), false, nil, expired.Add(-30*24*time.Hour), expired,
		expired.Add(-30*24*time.Hour), nil,
	)
	createdAt := time.Now().Add(-time.Hour)
	commissionRow := sqlmock.NewRows([]string{"commission_id", "code_id", "kind", "basis", "amount", "created_at"}).
		AddRow("cms_1", "code_123", model.ValuePercentage, int64(200000), int64(10000), createdAt)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("code_123").
		WillReturnRows(codeRow)
	mock.ExpectQuery(regexp.QuoteMeta("FROM commissions")).
		WithArgs("code_123").
		WillReturnRows(commissionRow)
	mock.ExpectCommit()

	commission, settled, err := ds.SettleDiscountCode(context.Background(), "code_123")
	assert.NoError(t, err)
	assert.False(t, settled)
	// Redelivery leaves the previously recorded commission unchanged.
	assert.Equal(t, "cms_1", commission.CommissionID)
	assert.Equal(t, int64(10000), commission.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleDiscountCode_MissingCommissionConfigIsPermanent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	expired := time.Now().Add(-48 * time.Hour)
	codeRow := discountCodeRows().AddRow(
		"code_bad", "NOCOMMISSION", model.CodeKindInfluencer, model.ValuePercentage, "10",
		nil, nil, nil, nil,
		int64(3), true, nil, expired.Add(-30*24*time.Hour), expired,
		expired.Add(-30*24*time.Hour), nil,
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("code_bad").
		WillReturnRows(codeRow)
	mock.ExpectRollback()

	_, _, err = ds.SettleDiscountCode(context.Background(), "code_bad")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrPermanent, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleDiscountCode_LeadReservationWithoutCommission(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	expired := time.Now().Add(-48 * time.Hour)
	codeRow := discountCodeRows().AddRow(
		"code_lead", "LEAD5", model.CodeKindLeadReservation, model.ValueFixed, "500",
		nil, nil, nil, int64(1),
		int64(1), true, "lead_9", expired.Add(-30*24*time.Hour), expired,
		expired.Add(-30*24*time.Hour), nil,
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("code_lead").
		WillReturnRows(codeRow)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE discount_codes")).
		WithArgs("code_lead").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	commission, settled, err := ds.SettleDiscountCode(context.Background(), "code_lead")
	assert.NoError(t, err)
	assert.True(t, settled)
	// Lead reservation codes settle without a commission.
	assert.Nil(t, commission)
	assert.NoError(t, mock.ExpectationsWereMet())
}

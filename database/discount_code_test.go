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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

func discountCodeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"code_id", "code", "kind", "discount_type", "discount_value",
		"commission_type", "commission_value", "min_purchase", "max_uses",
		"used_count", "is_active", "lead_id", "valid_from", "valid_until",
		"created_at", "meta_data",
	})
}

func TestCreateDiscountCode_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	code := &model.DiscountCode{
		CodeID:        "code_123",
		Code:          "SUMMER10",
		Kind:          model.CodeKindInfluencer,
		DiscountType:  model.ValuePercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
		ValidFrom:     time.Now(),
		CreatedAt:     time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO discount_codes")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := ds.CreateDiscountCode(context.Background(), code)
	assert.NoError(t, err)
	assert.Equal(t, "code_123", result.CodeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDiscountCodeByCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("MISSING").
		WillReturnRows(discountCodeRows())

	_, err = ds.GetDiscountCodeByCode(context.Background(), "MISSING")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDiscountCodeByCode_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	validUntil := time.Now().Add(48 * time.Hour)
	rows := discountCodeRows().AddRow(
		"code_123", "SUMMER10", model.CodeKindInfluencer, model.ValuePercentage, "10",
		model.ValuePercentage, "5", int64(5000), int64(100),
		int64(3), true, nil, time.Now().Add(-time.Hour), validUntil,
		time.Now().Add(-time.Hour), []byte(`{"campaign":"summer"}`),
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("SUMMER10").
		WillReturnRows(rows)

	code, err := ds.GetDiscountCodeByCode(context.Background(), "SUMMER10")
	assert.NoError(t, err)
	assert.Equal(t, "code_123", code.CodeID)
	assert.Equal(t, model.CodeKindInfluencer, code.Kind)
	assert.True(t, code.IsActive)
	assert.NotNil(t, code.MinPurchase)
	assert.Equal(t, int64(5000), *code.MinPurchase)
	assert.NotNil(t, code.MaxUses)
	assert.Equal(t, int64(100), *code.MaxUses)
	assert.Equal(t, "summer", code.MetaData["campaign"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementDiscountCodeUsage_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE discount_codes")).
		WithArgs("SUMMER10").
		WillReturnRows(sqlmock.NewRows([]string{"used_count"}).AddRow(int64(4)))

	usedCount, ok, err := ds.IncrementDiscountCodeUsage(context.Background(), "SUMMER10")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), usedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementDiscountCodeUsage_Exhausted(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	// Zero rows back from the guarded UPDATE means the code lost its last
	// slot to a concurrent redemption (or was deactivated).
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE discount_codes")).
		WithArgs("LASTSLOT").
		WillReturnRows(sqlmock.NewRows([]string{"used_count"}))

	usedCount, ok, err := ds.IncrementDiscountCodeUsage(context.Background(), "LASTSLOT")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), usedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllDiscountCodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := discountCodeRows().
		AddRow(
			"code_b", "WINTER20", model.CodeKindInfluencer, model.ValuePercentage, "20",
			nil, nil, nil, nil,
			int64(0), true, nil, now, nil,
			now, nil,
		).
		AddRow(
			"code_a", "SUMMER10", model.CodeKindLeadReservation, model.ValueFixed, "1000",
			nil, nil, nil, int64(1),
			int64(0), true, "lead_1", now.Add(-time.Hour), nil,
			now.Add(-time.Hour), nil,
		)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(rows)

	codes, err := ds.GetAllDiscountCodes(context.Background())
	assert.NoError(t, err)
	assert.Len(t, codes, 2)
	assert.Equal(t, "code_b", codes[0].CodeID)
	assert.Equal(t, "lead_1", codes[1].LeadID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExpiredActiveCodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	cutoff := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	expired := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	rows := discountCodeRows().AddRow(
		"code_old", "SPRING5", model.CodeKindInfluencer, model.ValueFixed, "500",
		nil, nil, nil, nil,
		int64(12), true, nil, expired.Add(-30*24*time.Hour), expired,
		expired.Add(-30*24*time.Hour), nil,
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(cutoff, 10).
		WillReturnRows(rows)

	codes, err := ds.GetExpiredActiveCodes(context.Background(), cutoff, 10)
	assert.NoError(t, err)
	assert.Len(t, codes, 1)
	assert.Equal(t, "code_old", codes[0].CodeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

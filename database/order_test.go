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

func orderItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"order_id", "product_id", "quantity", "unit_price"})
}

func TestRecordOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	order := &model.Order{
		OrderID:        "ord_1",
		DiscountCodeID: "code_123",
		DiscountAmount: 1000,
		TotalAmount:    9000,
		Status:         model.OrderStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Items: []model.OrderItem{
			{ProductID: "prod_1", Quantity: 2, UnitPrice: 5000},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs("ord_1", "prod_1", int64(2), int64(5000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := ds.RecordOrder(context.Background(), order)
	assert.NoError(t, err)
	assert.Equal(t, "ord_1", result.OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("ord_1").
		WillReturnRows(orderRows().AddRow("ord_1", nil, int64(0), false, int64(9000), model.OrderStatusPending, now, now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs("ord_1").
		WillReturnRows(orderItemRows())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders")).
		WithArgs("ord_1", model.OrderStatusAwaitingPayment, model.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.TransitionOrder(context.Background(), "ord_1", model.OrderStatusAwaitingPayment)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrder_RejectedByTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("ord_1").
		WillReturnRows(orderRows().AddRow("ord_1", nil, int64(0), false, int64(9000), model.OrderStatusCancelled, now, now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs("ord_1").
		WillReturnRows(orderItemRows())

	err = ds.TransitionOrder(context.Background(), "ord_1", model.OrderStatusPaid)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrder_LostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("ord_1").
		WillReturnRows(orderRows().AddRow("ord_1", nil, int64(0), false, int64(9000), model.OrderStatusAwaitingPayment, now, now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs("ord_1").
		WillReturnRows(orderItemRows())
	// Another consumer moved the order between the read and the UPDATE.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders")).
		WithArgs("ord_1", model.OrderStatusPaid, model.OrderStatusAwaitingPayment).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.TransitionOrder(context.Background(), "ord_1", model.OrderStatusPaid)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

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
	"time"

	"github.com/veldcommerce/veld/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	discountCode // Interface for discount-code operations
	order        // Interface for order operations
	payment      // Interface for payment reconciliation operations
	settlement   // Interface for settlement operations
}

// discountCode defines methods for handling discount codes.
type discountCode interface {
	CreateDiscountCode(ctx context.Context, code *model.DiscountCode) (*model.DiscountCode, error)      // Creates a new discount code
	GetDiscountCodeByCode(ctx context.Context, code string) (*model.DiscountCode, error)                // Retrieves a discount code by its code string
	GetDiscountCodeByID(ctx context.Context, codeID string) (*model.DiscountCode, error)                // Retrieves a discount code by ID
	GetAllDiscountCodes(ctx context.Context) ([]*model.DiscountCode, error)                             // Retrieves the most recent discount codes
	GetExpiredActiveCodes(ctx context.Context, cutoff time.Time, limit int) ([]*model.DiscountCode, error) // Retrieves active codes past their expiry boundary
	IncrementDiscountCodeUsage(ctx context.Context, code string) (int64, bool, error)                   // Atomically increments a code's usage counter
}

// order defines methods for handling orders.
type order interface {
	RecordOrder(ctx context.Context, order *model.Order) (*model.Order, error) // Records a new order with its items
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)        // Retrieves an order by ID
	TransitionOrder(ctx context.Context, orderID string, to string) error      // Moves an order through the transition table
}

// payment defines methods for reconciling gateway payment events.
type payment interface {
	GetPaymentByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error)                       // Retrieves a payment by provider reference
	ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent, status string) (*model.PaymentOutcome, error) // Applies a gateway event atomically
}

// settlement defines methods for settling expired discount codes.
type settlement interface {
	SettleDiscountCode(ctx context.Context, codeID string) (*model.Commission, bool, error) // Settles a code and records its commission
	GetCommissionByCodeID(ctx context.Context, codeID string) (*model.Commission, error)    // Retrieves the commission recorded for a code
}

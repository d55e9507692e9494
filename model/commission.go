package model

import (
	"encoding/json"
	"time"
)

// Commission is the derived value recorded when a discount code is settled.
// Basis is the attributed revenue for percentage commission, or the number of
// qualifying uses for fixed commission.
type Commission struct {
	ID           int64     `json:"-"`
	CommissionID string    `json:"commission_id"`
	CodeID       string    `json:"code_id"`
	Kind         string    `json:"kind"`
	Basis        int64     `json:"basis"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

func (commission *Commission) ToJSON() ([]byte, error) {
	return json.Marshal(commission)
}

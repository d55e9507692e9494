package model

import (
	"encoding/json"
	"errors"
)

// Queue task payloads. Every payload is a tagged struct validated at dequeue
// time so a malformed or foreign task is rejected before any store access.

// SettlementTask asks the settlement worker to drive one discount code into
// its terminal state.
type SettlementTask struct {
	CodeID string `json:"code_id"`
}

// LeadNotificationTask asks the notification worker to deliver the outbound
// notification for a captured lead.
type LeadNotificationTask struct {
	LeadID string `json:"lead_id"`
}

// ScanTask triggers a scan run. Limit overrides the configured batch size
// when positive; manual triggers leave it at zero.
type ScanTask struct {
	Limit int `json:"limit,omitempty"`
}

func ParseSettlementTask(payload []byte) (*SettlementTask, error) {
	var task SettlementTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, err
	}
	if task.CodeID == "" {
		return nil, errors.New("settlement task payload missing code_id")
	}
	return &task, nil
}

func ParseLeadNotificationTask(payload []byte) (*LeadNotificationTask, error) {
	var task LeadNotificationTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, err
	}
	if task.LeadID == "" {
		return nil, errors.New("lead notification task payload missing lead_id")
	}
	return &task, nil
}

func ParseScanTask(payload []byte) (*ScanTask, error) {
	var task ScanTask
	if len(payload) == 0 {
		return &task, nil
	}
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

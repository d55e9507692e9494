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

package veld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingletonKeysAreStable(t *testing.T) {
	// Two submissions for the same entity must build the same task ID, since
	// the task ID is what collapses them inside the dedup window.
	assert.Equal(t, SettlementTaskID("code_123"), SettlementTaskID("code_123"))
	assert.Equal(t, "code-settle:code_123", SettlementTaskID("code_123"))
	assert.Equal(t, "lead-notification:lead_9", LeadNotificationTaskID("lead_9"))
	assert.NotEqual(t, SettlementTaskID("code_123"), SettlementTaskID("code_124"))
}

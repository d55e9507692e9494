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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/veldcommerce/veld/api/model"
)

// TriggerScan enqueues a scan run outside the cron schedule. The scan task
// goes through the same dedup gate as the scheduled run, so rapid
// re-triggers collapse into one job.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 202 Accepted: The scan run is enqueued (or collapsed onto a pending one).
// - 500 Internal Server Error: If the enqueue failed.
func (a Api) TriggerScan(c *gin.Context) {
	var trigger model2.TriggerScan
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&trigger); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
	}

	if err := a.veld.Queue().EnqueueScan(c.Request.Context(), trigger.Limit); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "scan enqueued"})
}

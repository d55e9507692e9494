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

	"github.com/sirupsen/logrus"

	"github.com/gin-gonic/gin"

	model2 "github.com/veldcommerce/veld/api/model"
	"github.com/veldcommerce/veld/internal/apierror"
)

// CreateDiscountCode handles the creation of a new discount code.
// It binds the incoming JSON request to a CreateDiscountCode object,
// validates it, and persists the code through the engine.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 400 Bad Request: If there's an error in binding JSON or validating the code.
// - 201 Created: If the discount code is successfully created.
func (a Api) CreateDiscountCode(c *gin.Context) {
	var newCode model2.CreateDiscountCode
	if err := c.ShouldBindJSON(&newCode); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := newCode.ValidateCreateDiscountCode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.veld.CreateDiscountCode(c.Request.Context(), newCode.ToDiscountCode())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetDiscountCode retrieves a discount code by its code string.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 404 Not Found: If no code matches.
// - 200 OK: The discount code.
func (a Api) GetDiscountCode(c *gin.Context) {
	code, passed := c.Params.Get("code")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required. pass code in the route /:code"})
		return
	}

	resp, err := a.veld.GetDiscountCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAllDiscountCodes retrieves the most recently created discount codes.
//
// Responses:
// - 200 OK: The list of discount codes.
func (a Api) GetAllDiscountCodes(c *gin.Context) {
	resp, err := a.veld.GetAllDiscountCodes(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RedeemDiscountCode attempts to redeem a discount code against a purchase
// amount at checkout time. Rejections are well-formed 200 responses carrying
// a reason; only store failures surface as errors.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 400 Bad Request: If there's an error in binding JSON or validating the request.
// - 200 OK: The redemption result, accepted or rejected with a reason.
func (a Api) RedeemDiscountCode(c *gin.Context) {
	code, passed := c.Params.Get("code")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required. pass code in the route /:code"})
		return
	}

	var redeem model2.RedeemCode
	if err := c.ShouldBindJSON(&redeem); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := redeem.ValidateRedeemCode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.veld.TryRedeem(c.Request.Context(), code, redeem.PurchaseAmount)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCommission retrieves the commission recorded for a settled code.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 404 Not Found: If the code is unknown or not yet settled.
// - 200 OK: The recorded commission.
func (a Api) GetCommission(c *gin.Context) {
	code, passed := c.Params.Get("code")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required. pass code in the route /:code"})
		return
	}

	dc, err := a.veld.GetDiscountCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	resp, err := a.veld.GetCommission(c.Request.Context(), dc.CodeID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

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
	"github.com/gin-gonic/gin"

	"github.com/veldcommerce/veld"
	"github.com/veldcommerce/veld/api/middleware"
	"github.com/veldcommerce/veld/config"
)

type Api struct {
	veld   *veld.Veld
	router *gin.Engine
	secure bool
}

func (a Api) Router() *gin.Engine {
	router := a.router

	// The gateway cannot present the secret key, so the webhook route stays
	// outside the secured group. The reconciler behind it is idempotent
	// against replays, and signature validation sits in front of this
	// service.
	router.POST("/webhooks/payments", a.ReceivePaymentEvent)

	secured := router.Group("/")
	if a.secure {
		secured.Use(middleware.SecretKeyAuthMiddleware())
	}

	secured.POST("/discount-codes", a.CreateDiscountCode)
	secured.GET("/discount-codes", a.GetAllDiscountCodes)
	secured.GET("/discount-codes/:code", a.GetDiscountCode)
	secured.POST("/discount-codes/:code/redeem", a.RedeemDiscountCode)
	secured.GET("/discount-codes/:code/commission", a.GetCommission)

	secured.POST("/orders", a.RecordOrder)
	secured.GET("/orders/:id", a.GetOrder)

	secured.POST("/admin/scan", a.TriggerScan)

	return a.router
}

func NewAPI(v *veld.Veld) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{veld: v, router: r, secure: conf.Server.Secure}
}

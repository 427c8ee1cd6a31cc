package main

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"bitbucket.org/mmdatafocus/webshop_backend/workflow"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
)

type cartSyncRequest struct {
	Items []workflow.CartLine `json:"items"`
}

func syncCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		var req cartSyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		result, err := workflow.SyncCartToQuotation(c.Request.Context(), config.GetDB(), req.Items)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getCurrentQuotationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		quotation, err := workflow.GetCurrentQuotation(c.Request.Context(), config.GetDB())
		if err != nil {
			respondError(c, err)
			return
		}
		if quotation == nil {
			c.JSON(http.StatusOK, gin.H{"quotation": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"quotation": quotation})
	}
}

type placeOrderRequest struct {
	QuotationId int  `json:"quotation_id" binding:"required"`
	AddressId   *int `json:"address_id"`
}

// placeOrderHandler runs the conversion saga. The redis lock is a best-effort
// guard against double-submits from the same user; correctness does not
// depend on it, the draft precondition inside the transaction does.
func placeOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := requireUsername(c)
		if !ok {
			return
		}
		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		logger := config.GetLogger()
		var lock *redislock.Lock
		if locker := config.GetRedisLock(); locker != nil {
			var err error
			lock, err = locker.Obtain(c.Request.Context(), fmt.Sprintf("lock:order:%s", username), 30*time.Second, nil)
			if err == redislock.ErrNotObtained {
				c.JSON(http.StatusConflict, gin.H{"error": "an order is already being placed"})
				return
			} else if err != nil {
				logger.Warn("error obtaining order lock; proceeding without lock: " + err.Error())
				lock = nil
			}
		}
		defer func() {
			if lock != nil {
				if releaseErr := lock.Release(c.Request.Context()); releaseErr != nil {
					logger.Warn("failed to release order lock: " + releaseErr.Error())
				}
			}
		}()

		result, err := workflow.PlaceOrder(c.Request.Context(), config.GetDB(), req.QuotationId, req.AddressId)
		if err != nil {
			respondError(c, err)
			return
		}
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"sales_order_id":   result.SalesOrderId,
			"sales_invoice_id": result.SalesInvoiceId,
			"grand_total":      result.GrandTotal,
			"correlation_id":   cid,
		})
	}
}

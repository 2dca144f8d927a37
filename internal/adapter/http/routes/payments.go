package routes

import (
	"os"

	"safarpay/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const PathPayments = "/payments"

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/initialize", paymentHandler.InitializePayment)
		payments.GET("/verify/:tx_ref", paymentHandler.VerifyPayment)
		payments.GET("/callback", paymentHandler.Callback)
		payments.GET("/:tx_ref", paymentHandler.GetPayment)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

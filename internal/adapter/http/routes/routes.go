package routes

import (
	"context"
	"log"
	"strconv"

	_ "safarpay/docs" // swag-generated documentation
	"safarpay/internal/adapter/http/handlers"
	"safarpay/internal/adapter/persistence/repository"
	"safarpay/internal/infrastructure/database"
	"safarpay/internal/infrastructure/notifications"
	"safarpay/internal/infrastructure/payments"
	"safarpay/internal/infrastructure/queue"
	"safarpay/internal/usecase"
	"safarpay/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const (
	PORT = 8080

	notificationQueueBuffer = 64
)

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	paymentRepo := repository.NewPaymentDynamoRepository(ddb)
	bookingRepo := repository.NewBookingDynamoRepository(ddb)

	var gateway interfaces.IPaymentGateway
	chapaGateway, err := payments.NewChapaGateway(payments.NewChapaConfigFromEnv())
	if err != nil {
		log.Printf("Chapa gateway not configured: %v", err)
	} else {
		gateway = chapaGateway
	}

	sender := notifications.NewSMTPSender(notifications.NewSMTPConfigFromEnv())
	notificationUseCase := usecase.NewNotificationUseCase(paymentRepo, sender)

	notificationQueue := queue.NewInMemoryNotificationQueue(notificationQueueBuffer)
	notificationQueue.Start(context.Background(), func(ctx context.Context, task interfaces.NotificationTask) error {
		sent, err := notificationUseCase.NotifyCompletion(ctx, task.PaymentID)
		if err != nil {
			return err
		}
		if !sent {
			log.Printf("[notification][worker] skipped payment_id=%s", task.PaymentID)
		}
		return nil
	})

	paymentUseCase := usecase.NewPaymentUseCase(
		paymentRepo,
		bookingRepo,
		gateway,
		notificationQueue,
		getenvDefault("APP_BASE_URL", "http://localhost:8080"),
	)

	paymentHandler := handlers.NewPaymentHandler(paymentUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPaymentRoutes(v1, paymentHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

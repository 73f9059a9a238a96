package main

import (
	"wayfare/internal/checkout/handler"
	"wayfare/internal/checkout/repository"
	"wayfare/internal/checkout/service"
	"wayfare/internal/checkout/validator"
	couponrepository "wayfare/internal/coupons/repository"
	couponservice "wayfare/internal/coupons/service"
	couponvalidator "wayfare/internal/coupons/validator"
	exprepository "wayfare/internal/experiences/repository"
	"wayfare/internal/notifications"
	"wayfare/internal/payments"
	"wayfare/pkg/app"
	"wayfare/pkg/config"
	"wayfare/pkg/kafka"
)

const ServiceName = "checkout"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Checkout service")
	checkoutService, producer := initServices(cfg)
	defer func() {
		checkoutService.Stop()
		if producer != nil {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewCheckoutHandler(checkoutService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.CheckoutService, *kafka.Producer) {
	checkoutValidator := validator.NewCheckoutValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	experienceRepo := exprepository.NewMongoExperienceRepository(cfg)

	couponRepo := couponrepository.NewMongoCouponRepository(cfg)
	couponService := couponservice.NewCouponService(
		couponRepo,
		experienceRepo,
		couponvalidator.NewCouponValidator(cfg.Log),
		cfg,
	)

	gateway := payments.NewGateway(cfg)

	var producer *kafka.Producer
	var dispatcher notifications.Dispatcher
	if cfg.NotificationsDisabled {
		dispatcher = notifications.NewNopDispatcher(cfg.Log)
	} else {
		var err error
		producer, err = kafka.NewProducer(kafka.Config{
			Brokers: cfg.KafkaBrokers,
		}, cfg.NotificationsTopic, cfg.NotificationsDLQTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		dispatcher = notifications.NewKafkaDispatcher(producer, ServiceName, cfg.NotificationTimeout, cfg.Log)
	}

	checkoutService := service.NewCheckoutService(
		bookingRepo,
		experienceRepo,
		couponService,
		checkoutValidator,
		gateway,
		dispatcher,
		cfg,
	)

	cfg.Log.Info("Checkout service initialized", "database", cfg.MongoDatabaseName)
	return checkoutService, producer
}

package main

import (
	"context"

	"wayfare/internal/coupons/handler"
	"wayfare/internal/coupons/repository"
	"wayfare/internal/coupons/service"
	"wayfare/internal/coupons/validator"
	exprepository "wayfare/internal/experiences/repository"
	"wayfare/pkg/app"
	"wayfare/pkg/config"
)

const ServiceName = "coupons"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Coupons service")
	couponService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewCouponHandler(couponService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CouponService {
	couponValidator := validator.NewCouponValidator(cfg.Log)
	couponRepo := repository.NewMongoCouponRepository(cfg)
	experienceRepo := exprepository.NewMongoExperienceRepository(cfg)

	if err := couponRepo.EnsureIndexes(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to ensure coupon indexes", "error", err)
	}

	couponService := service.NewCouponService(
		couponRepo,
		experienceRepo,
		couponValidator,
		cfg,
	)

	cfg.Log.Info("Coupon service initialized", "database", cfg.MongoDatabaseName)
	return couponService
}

package server

import (
	"context"
	"log"
	"net/http"

	"auth-service/internal/config"
	"auth-service/internal/handler"
	"auth-service/internal/otp"
	"auth-service/internal/repository"
	"auth-service/internal/router"
	dadataclient "auth-service/internal/service/dadata"
	smsclient "auth-service/internal/service/sms"
	"auth-service/internal/token"
	"auth-service/internal/usecase"
	"auth-service/pkg/cache"
	"auth-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewServer builds the full dependency graph. Every handle is constructed
// here and injected; nothing reaches for globals.
func NewServer(cfg config.AppConfig) (*http.Server, *pgxpool.Pool) {
	dbpool, err := pgxpool.New(context.Background(), cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}

	store := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)

	otpSvc := otp.NewService(store, cfg.OTPLength, cfg.OTPTTL, cfg.OTPCooldown, cfg.OTPMaxAttempts)
	tokenSvc := token.NewService(cfg.JWTSecret, cfg.JWTAlgorithm,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.TempTokenTTL)

	userRepo := repository.NewUserRepository(dbpool)
	otpLogRepo := repository.NewOTPLogRepo(dbpool)
	smsCli := smsclient.NewSMSClient(cfg.SMSRuAPIKey)
	dadataCli := dadataclient.NewDaDataClient(cfg.DaDataAPIKey)

	authUC := usecase.NewAuthUsecase(
		otpSvc, tokenSvc, userRepo, smsCli, dadataCli, otpLogRepo,
		cfg.SMSDailyLimit, cfg.AppName, cfg.AdminPhone,
	)

	authHandler := handler.NewAuthHandler(authUC)
	auth := middleware.NewAuthMiddleware(tokenSvc)

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, auth, cfg.CORSOrigins)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}, dbpool
}

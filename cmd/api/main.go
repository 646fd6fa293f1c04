package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audioshop/internal/config"
	"audioshop/internal/events"
	"audioshop/internal/handler"
	"audioshop/internal/infra/db"
	infraRepo "audioshop/internal/infra/repository"
	"audioshop/internal/logging"
	"audioshop/internal/server"
	"audioshop/internal/usecase"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "audioshop")
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Warn("db close failed", "err", err)
		}
	}()

	if err := db.Migrate(ctx, gormDB); err != nil {
		return err
	}

	//イベント送信。ブローカー未設定なら送らない
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("publisher close failed", "err", err)
		}
	}()

	//Repository（GORM実装）生成
	tm := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	lineRepo := infraRepo.NewOrderLineGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	accessoryRepo := infraRepo.NewAccessoryGormRepository(gormDB)

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(tm, orderRepo, lineRepo, publisher)
	productUC := usecase.NewProductUsecase(tm, productRepo, accessoryRepo, publisher)
	userUC := usecase.NewUserUsecase(userRepo)

	e := server.New(server.Deps{
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		Users:     userRepo,
		Orders:    handler.NewOrderHandler(orderUC),
		Products:  handler.NewProductHandler(productUC),
		UserH:     handler.NewUserHandler(userUC),
	})
	srv := server.NewHTTPServer(":"+cfg.Port, e)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		//シグナルかListenの失敗で止める
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

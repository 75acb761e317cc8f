package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logger"
	"app/internal/notification"
	"app/internal/payos"
	"app/internal/scheduler"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	}); err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.StockHistory{},
		&model.Voucher{},
		&model.UserVoucherUsage{},
		&model.OrderVoucher{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	payosClient := payos.NewClient(cfg.PayOSClientID, cfg.PayOSAPIKey, cfg.PayOSChecksumKey)
	notifier := notification.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	//Usecase生成
	ledger := usecase.NewStockLedger()
	voucherSvc := usecase.NewVoucherService(txManager)
	orderUC := usecase.NewOrderUsecase(txManager, ledger, voucherSvc, notifier)
	paymentUC := usecase.NewPaymentUsecase(txManager, payosClient)
	inventoryUC := usecase.NewInventoryUsecase(txManager, ledger)
	purchaseOrderUC := usecase.NewPurchaseOrderUsecase(txManager, ledger)
	reconcileUC := usecase.NewReconcileUsecase(txManager, paymentUC, ledger, voucherSvc)

	//Handler生成
	hs := server.Handlers{
		Order:         handler.NewOrderHandler(orderUC),
		Payment:       handler.NewPaymentHandler(paymentUC, payosClient, cfg.FEURL),
		Inventory:     handler.NewInventoryHandler(inventoryUC),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderUC),
		Voucher:       handler.NewVoucherHandler(voucherSvc),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//定期ジョブ起動
	sched := scheduler.New(
		scheduler.Job{
			Name:     "poll-pending-payments",
			Interval: cfg.PollPaymentsInterval,
			Run:      reconcileUC.PollPendingPayments,
		},
		scheduler.Job{
			Name:     "cancel-expired-payments",
			Interval: cfg.CancelExpiredInterval,
			Run:      reconcileUC.CancelExpiredPayments,
		},
	)
	sched.Start(ctx)

	//Server起動
	e := server.New(cfg, hs)
	go func() {
		addr := ":" + cfg.Port
		if err := server.Start(e, addr); err != nil {
			logger.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx, e); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	sched.Wait()
}

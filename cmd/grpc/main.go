package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-restock-service/config"
	"github.com/fekuna/omnipos-restock-service/internal/auth"
	"github.com/fekuna/omnipos-restock-service/internal/broker"
	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	catRepoPkg "github.com/fekuna/omnipos-restock-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-restock-service/internal/database/postgres"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	invH "github.com/fekuna/omnipos-restock-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-restock-service/internal/inventory/listener"
	invRecorderPkg "github.com/fekuna/omnipos-restock-service/internal/inventory/recorder"
	invUCPkg "github.com/fekuna/omnipos-restock-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		OutputPaths:       cfg.Logger.OutputPaths,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database when any component needs it
	var db *sqlx.DB
	if cfg.Store.Driver == config.StoreDriverPostgres || cfg.Events.ToPostgres {
		var err error
		db, err = postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	}

	// 4. Initialize Catalog
	var repo catalog.Repository
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pgRepo := catRepoPkg.NewPGRepository(db)
		if err := pgRepo.Migrate(ctx); err != nil {
			appLogger.Fatal("Could not migrate products table", zap.Error(err))
		}
		repo = pgRepo
	case config.StoreDriverFile:
		repo = catRepoPkg.NewFileRepository(cfg.Store.FilePath)
	default:
		appLogger.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}

	store := catalog.NewStore(repo)
	if err := store.Load(ctx); err != nil {
		appLogger.Warn("Could not load catalog, starting empty", zap.Error(err))
	} else {
		appLogger.Info("Loaded catalog", zap.Int("products", store.Len()), zap.String("driver", cfg.Store.Driver))
	}

	// 5. Initialize Event Recorders
	recorders := []inventory.EventRecorder{invRecorderPkg.NewLogRecorder(appLogger)}
	if cfg.Events.ToPostgres {
		pgRecorder := invRecorderPkg.NewPGRecorder(db)
		if err := pgRecorder.Migrate(ctx); err != nil {
			appLogger.Fatal("Could not migrate inventory_events table", zap.Error(err))
		}
		recorders = append(recorders, pgRecorder)
	}

	var kafkaConsumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		kafkaProducer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.EventsTopic,
		})
		defer kafkaProducer.Close()
		recorders = append(recorders, invRecorderPkg.NewKafkaRecorder(kafkaProducer))

		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrdersTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("orders_topic", cfg.Kafka.OrdersTopic), zap.String("events_topic", cfg.Kafka.EventsTopic))
	}

	// 6. Initialize UseCase
	invUC := invUCPkg.NewInventoryUseCase(store, invRecorderPkg.Multi(recorders...), appLogger)

	// 6.5 Initialize Listener
	if kafkaConsumer != nil {
		invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
		go invListener.Start(ctx)
	}

	// 7. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.ActorInterceptor()),
	)

	invH.RegisterRestockServiceServer(grpcServer, invH.NewInventoryHandler(invUC, appLogger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(invH.RestockServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 8. Start HTTP Server
	httpPort := cfg.Server.HTTPPort
	if !strings.HasPrefix(httpPort, ":") {
		httpPort = ":" + httpPort
	}

	app := invH.NewHTTPApp(invH.NewHTTPHandler(invUC, appLogger))
	appLogger.Info("Starting HTTP server", zap.String("port", httpPort))

	go func() {
		if err := app.Listen(httpPort); err != nil {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	healthServer.Shutdown()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

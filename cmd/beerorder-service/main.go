// cmd/beerorder-service/main.go
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"brewery/internal/pkg/bootstrap"
	"brewery/internal/pkg/mq"
	redispkg "brewery/internal/pkg/redis"
	"brewery/internal/service/beerorder/application"
	"brewery/internal/service/beerorder/domain"
	"brewery/internal/service/beerorder/fsm"
	"brewery/internal/service/beerorder/infrastructure"
	"brewery/internal/service/beerorder/interfaces"
)

// main 是应用的组装根 (Composition Root)：
// 创建并组装所有依赖项，然后把生命周期交给 bootstrap。
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// 存储
	db, err := gorm.Open(mysql.Open(cfg.Mysql.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(&infrastructure.BeerOrderModel{}, &infrastructure.BeerOrderLineModel{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}
	repo := infrastructure.NewGormBeerOrderRepository(db)

	// 出站通道
	topics := cfg.Kafka.Topics
	validationWriter := mq.NewKafkaWriter(cfg.Kafka.Brokers, topics.ValidateOrderRequest)
	allocationWriter := mq.NewKafkaWriter(cfg.Kafka.Brokers, topics.AllocateOrderRequest)
	failureWriter := mq.NewKafkaWriter(cfg.Kafka.Brokers, topics.AllocationFailure)

	pubs := fsm.Publishers{
		Validation:        infrastructure.NewValidationRequestKafkaPublisher(validationWriter),
		Allocation:        infrastructure.NewAllocationRequestKafkaPublisher(allocationWriter),
		AllocationFailure: infrastructure.NewAllocationFailureKafkaPublisher(failureWriter),
	}

	// Saga 定义与编排者
	definition := fsm.NewDefinition(repo, pubs)
	tracer := otel.Tracer(cfg.Service.Name)
	manager := application.NewBeerOrderManager(repo, definition, tracer, application.ManagerConfig{
		AwaitAttempts: cfg.Saga.AwaitAttempts,
		AwaitInterval: time.Duration(cfg.Saga.AwaitInterval),
	})

	// 回调幂等守卫
	var dedup interfaces.Deduplicator
	if cfg.Redis.Addr != "" {
		redisClient, err := redispkg.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		dedup = infrastructure.NewRedisDeduplicator(redisClient, time.Duration(cfg.Redis.DedupTTL))
	}

	// 入站通道
	validationConsumer := interfaces.NewValidationResultConsumer(
		mq.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics.ValidationResult), manager, dedup)
	allocationConsumer := interfaces.NewAllocationResultConsumer(
		mq.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics.AllocationResult), manager, dedup)

	bootstrap.StartService(bootstrap.AppInfo{
		Config:  cfg,
		Workers: []bootstrap.Worker{validationConsumer, allocationConsumer},
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					CustomerRef string `json:"customerRef"`
					Lines       []struct {
						UPC      string `json:"upc"`
						Quantity int    `json:"qtyOrdered"`
					} `json:"lines"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				order := &domain.BeerOrder{CustomerRef: req.CustomerRef}
				for _, l := range req.Lines {
					order.Lines = append(order.Lines, domain.BeerOrderLine{UPC: l.UPC, OrderQuantity: l.Quantity})
				}
				saved, err := manager.CreateOrder(r.Context(), order)
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(saved.Snapshot())
			})
		},
	})
}

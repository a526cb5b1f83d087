// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"brewery/internal/pkg/nacos"
	"brewery/internal/tracing"
)

// AppCtx 传给服务的路由注册回调。
type AppCtx struct {
	Mux *http.ServeMux
}

// Worker 是随服务生命周期启停的后台组件（如 Kafka 消费者）。
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// AppInfo 包含了启动一个服务所需的所有特定信息。
type AppInfo struct {
	Config           *Config
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己的 HTTP 路由（健康检查、指标等）
	Workers          []Worker
}

// StartService 封装了通用的启动和优雅关停逻辑：
// 初始化追踪、可选的 Nacos 注册、HTTP 服务、后台 worker，
// 然后阻塞到收到退出信号，按后进先出的顺序清理。
func StartService(info AppInfo) {
	cfg := info.Config
	serviceName := cfg.Service.Name

	// 1. Tracer
	tp, err := tracing.InitTracerProvider(serviceName, cfg.Jaeger.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 可选的 Nacos 服务注册
	var naming *nacos.Client
	var ip string
	if cfg.Nacos.Addrs != "" {
		naming, err = nacos.NewClient(cfg.Nacos.Addrs, cfg.Nacos.Namespace, cfg.Nacos.Group)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = getOutboundIP()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := naming.RegisterServiceInstance(serviceName, ip, cfg.Service.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	// 3. 启动后台 worker（Kafka 消费者等）
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	for _, w := range info.Workers {
		w.Start(workerCtx)
	}

	// 4. HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.Service.Port), Handler: mux}

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		log.Info().Str("service", serviceName).Int("port", cfg.Service.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-gctx.Done():
		}

		log.Info().Str("service", serviceName).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// 清理按后进先出：先停 worker，再注销，再刷 trace，最后关 HTTP
		cancelWorkers()
		for _, w := range info.Workers {
			w.Stop()
		}

		if naming != nil {
			if err := naming.DeregisterServiceInstance(serviceName, ip, cfg.Service.Port); err != nil {
				log.Error().Err(err).Msg("error deregistering from nacos")
			}
		}

		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Str("service", serviceName).Msg("service exited with error")
	}
	log.Info().Str("service", serviceName).Msg("gracefully shut down")
}

// getOutboundIP 获取本机对外通信使用的 IP（用于服务注册）。
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

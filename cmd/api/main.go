package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/yourusername/livepoll-api/internal/config"
	"github.com/yourusername/livepoll-api/internal/handler"
	"github.com/yourusername/livepoll-api/internal/middleware"
	"github.com/yourusername/livepoll-api/internal/service"
	"github.com/yourusername/livepoll-api/internal/service/sessionmanager"
	ws "github.com/yourusername/livepoll-api/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализация WebSocket Hub
	hubConfig := ws.DefaultHubConfig()
	if cfg.WebSocket.Buffers.BroadcastBuffer > 0 {
		hubConfig.BroadcastBuffer = cfg.WebSocket.Buffers.BroadcastBuffer
	}
	if cfg.WebSocket.Buffers.ClientSendBuffer > 0 {
		hubConfig.ClientConfig.BufferSize = cfg.WebSocket.Buffers.ClientSendBuffer
	}
	wsHub := ws.NewHub(hubConfig)
	go wsHub.Run()

	wsManager := ws.NewManager(wsHub)

	// Инициализируем сессионный слой
	sessionConfig := sessionmanager.DefaultConfig()
	sessionConfig.TickInterval = cfg.Session.TickInterval()
	if cfg.Session.ChatHistorySize > 0 {
		sessionConfig.ChatHistorySize = cfg.Session.ChatHistorySize
	}
	if cfg.Session.CommandBuffer > 0 {
		sessionConfig.CommandBuffer = cfg.Session.CommandBuffer
	}
	if len(cfg.Session.ResponseTimeBucketsMs) > 0 {
		sessionConfig.ResponseTimeBucketsMs = cfg.Session.ResponseTimeBucketsMs
	}
	sessionConfig.AutoEndWhenAllAnswered = cfg.Session.AutoEndWhenAllAnswered

	sessionManager := service.NewSessionManager(sessionConfig, &sessionmanager.Dependencies{
		Broadcaster: wsManager,
		Clock:       clockwork.NewRealClock(),
	})

	// Отключение соединения убирает участника из его комнаты
	wsHub.SetDisconnectHandler(sessionManager.HandleDisconnect)

	// Инициализируем обработчики
	wsHandler := handler.NewWSHandler(wsHub, wsManager, sessionManager, cfg.Server.AllowedOrigins)
	analyticsHandler := handler.NewAnalyticsHandler(sessionManager)

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	rateLimiter := middleware.NewRateLimiter()
	api := router.Group("/api")
	{
		analytics := api.Group("/analytics")
		analytics.Use(middleware.ExtractRoomQuery("room", "roomID", service.DefaultRoomID))
		{
			analytics.GET("/current", analyticsHandler.GetCurrentAnalytics)
			analytics.GET("/participation", analyticsHandler.GetParticipation)
			analytics.GET("/history", analyticsHandler.GetHistory)
			// Генерация XLSX дороже обычного запроса, поэтому экспорт лимитируется
			analytics.GET("/export",
				rateLimiter.Limit(middleware.DefaultExportRateLimitConfig()),
				analyticsHandler.ExportAnalytics)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Служебные маршруты
	router.GET("/health", gin.WrapF(ws.WebSocketHealthCheckHandler(wsManager)))
	router.GET("/ws/metrics", gin.WrapF(ws.WebSocketMetricsHandler(wsManager)))

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем комнаты и хаб
	sessionManager.Shutdown()
	wsHub.Close()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}

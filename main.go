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
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"timetracker/internal/api"
	"timetracker/internal/config"
	"timetracker/internal/db"
	"timetracker/internal/logging"
	"timetracker/internal/report"
	"timetracker/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	closeLog := logging.Init(os.Getenv("LOG_FILE"))
	defer closeLog()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	store := db.Store{}
	reportHandlers := &api.ReportHandlers{
		Reports:  report.NewService(store, cfg.ReportOptions()),
		Location: cfg.Location,
	}

	if cfg.TelegramEnabled() {
		if err := telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev"); err != nil {
			log.Printf("Предупреждение: не удалось инициализировать Telegram бота: %v. Отправка отчетов отключена.", err)
		} else {
			reportHandlers.Mailer = telegram_api.NewReportMailer(telegram_api.Client, cfg.AccountingChatID)
		}
	}

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", api.AuthHeader, api.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", api.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.SetupRoutes(apiRouter, api.ApiDependencies{
		SecretKey: cfg.AuthSecret,
		Users:     store,
		Reports:   reportHandlers,
	})

	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Запуск HTTP-сервера отчетов на порту %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	<-ctx.Done()
	GracefulShutdown(srv)
}

// GracefulShutdown останавливает HTTP-сервер, дожидаясь текущих выгрузок.
func GracefulShutdown(srv *http.Server) {
	log.Println("Получен сигнал остановки, завершение работы...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("GracefulShutdown: ошибка остановки сервера: %v", err)
	}
	log.Println("Сервер остановлен.")
}

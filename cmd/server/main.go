package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/ecom-shop/internal/app"
	"github.com/linemk/ecom-shop/internal/app/handlers"
	"github.com/linemk/ecom-shop/internal/config"
	"github.com/linemk/ecom-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecom-shop/internal/lib/logger"
	"github.com/linemk/ecom-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	itemRepo := storage.NewItemRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	userService := service.NewUserService(application.Logger, application.DB, userRepo, cartRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	itemService := service.NewItemService(application.Logger, itemRepo)
	cartService := service.NewCartService(application.Logger, application.DB, userRepo, itemRepo, cartRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, userRepo, cartRepo, orderRepo)

	// открытые эндпоинты: регистрация и вход
	router.Post("/api/user/create", handlers.CreateUserHandler(application.Logger, userService))
	router.Post("/api/login", handlers.LoginHandler(application.Logger, userService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		// поиск пользователя по имени
		r.Get("/api/user/{username}", handlers.FindUserHandler(application.Logger, userService))
		// каталог товаров
		r.Get("/api/items", handlers.ListItemsHandler(application.Logger, itemService))
		r.Get("/api/items/{id}", handlers.GetItemHandler(application.Logger, itemService))
		r.Get("/api/items/name/{name}", handlers.GetItemsByNameHandler(application.Logger, itemService))
		// мутации корзины
		r.Post("/api/cart/addToCart", handlers.AddToCartHandler(application.Logger, cartService))
		r.Post("/api/cart/removeFromCart", handlers.RemoveFromCartHandler(application.Logger, cartService))
		// оформление заказа и история
		r.Post("/api/order/submit/{username}", handlers.SubmitOrderHandler(application.Logger, orderService))
		r.Get("/api/order/history/{username}", handlers.OrderHistoryHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}

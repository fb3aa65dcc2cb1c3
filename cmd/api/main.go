package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/yichen-lab/congee-pos/internal/auth"
	"github.com/yichen-lab/congee-pos/internal/cart"
	"github.com/yichen-lab/congee-pos/internal/checkout"
	"github.com/yichen-lab/congee-pos/internal/common"
	"github.com/yichen-lab/congee-pos/internal/config"
	"github.com/yichen-lab/congee-pos/internal/db"
	"github.com/yichen-lab/congee-pos/internal/events"
	"github.com/yichen-lab/congee-pos/internal/expense"
	"github.com/yichen-lab/congee-pos/internal/health"
	"github.com/yichen-lab/congee-pos/internal/menu"
	"github.com/yichen-lab/congee-pos/internal/obs"
	"github.com/yichen-lab/congee-pos/internal/order"
	"github.com/yichen-lab/congee-pos/internal/ratelimit"
	"github.com/yichen-lab/congee-pos/internal/repo"
	"github.com/yichen-lab/congee-pos/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "congee_pos")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", false)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "congee-pos-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "congee-pos-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	menuRepo := repo.MenuRepo{Pool: pool}
	ordersRepo := repo.OrdersRepo{Pool: pool}
	expensesRepo := repo.ExpensesRepo{Pool: pool}
	eventsRepo := repo.EventsRepo{Pool: pool}

	bus := &events.Bus{
		Store:     eventsRepo,
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
	}

	menuService, err := menu.NewService(menu.ServiceConfig{
		Store: menuRepo,
		Cache: menu.NewCache(redisClient, cfg.MenuCacheTTL),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise menu service")
	}
	menuHandler := menu.NewHandler(menu.HandlerConfig{Service: menuService})

	cartService := &cart.Service{
		Store: &cart.Store{R: redisClient, TTL: cfg.CartTTL},
		Menu:  menuService,
	}
	cartHandler := cart.NewHandler(cart.HandlerConfig{Service: cartService})

	checkoutService := &checkout.Service{
		Cart:   cartService,
		Orders: ordersRepo,
		Events: bus,
		Logger: logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutService}

	orderService := &order.Service{Store: ordersRepo, Events: bus}
	orderHandler := order.NewHandler(order.HandlerConfig{Service: orderService})

	expenseService := &expense.Service{Store: expensesRepo, Events: bus}
	expenseHandler := expense.NewHandler(expense.HandlerConfig{Service: expenseService})

	reportService := &report.Service{
		Q:   reportQuerier{orders: ordersRepo, expenses: expensesRepo},
		R:   redisClient,
		TTL: cfg.ReportCacheTTL,
	}
	reportHandler := &report.Handler{Svc: reportService}

	authService, err := auth.NewService(auth.Config{
		Secret:         cfg.JWTSecret,
		OwnerPINHash:   cfg.OwnerPINHash,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Svc: authService}
	authMiddleware := auth.Middleware{Service: authService}

	loginLimiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:login:"},
		Config: ratelimit.Config{
			Key:    ratelimit.KeyByClientIP,
			Window: cfg.LoginRateWindow,
			Max:    cfg.LoginRateMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("login rate limiter")
		},
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(authMiddleware.Authenticate)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Probes{Pool: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(loginLimiter.Middleware).Post("/auth/login", authHandler.Login)

		v.Get("/menu", menuHandler.Menu)
		v.Route("/menu", func(m chi.Router) {
			m.Use(authMiddleware.RequireOwner)
			m.Put("/categories/order", menuHandler.ReorderCategories)
			m.Post("/categories", menuHandler.CreateCategory)
			m.Put("/categories/{id}", menuHandler.UpdateCategory)
			m.Delete("/categories/{id}", menuHandler.DeleteCategory)
			m.Post("/products", menuHandler.CreateProduct)
			m.Put("/products/{id}", menuHandler.UpdateProduct)
			m.Delete("/products/{id}", menuHandler.DeleteProduct)
			m.Post("/modifiers", menuHandler.CreateModifier)
			m.Put("/modifiers/{id}", menuHandler.UpdateModifier)
			m.Delete("/modifiers/{id}", menuHandler.DeleteModifier)
		})

		v.Route("/carts", func(c chi.Router) {
			c.Post("/", cartHandler.Create)
			c.Get("/{id}", cartHandler.Get)
			c.Post("/{id}/lines", cartHandler.AddLine)
			c.Patch("/{id}/lines/{lineId}", cartHandler.UpdateLine)
			c.Post("/{id}/lines/{lineId}/toggle/{modifierId}", cartHandler.ToggleModifier)
			c.Delete("/{id}/lines/{lineId}", cartHandler.RemoveLine)
			c.Delete("/{id}", cartHandler.Clear)
		})

		v.With(idem.Middleware).Post("/checkout", checkoutHandler.Checkout)

		v.Get("/orders", orderHandler.List)
		v.Get("/orders/{id}", orderHandler.Get)
		v.With(authMiddleware.RequireOwner).Post("/orders/{id}/void", orderHandler.Void)

		v.Route("/expenses", func(e chi.Router) {
			e.Use(authMiddleware.RequireOwner)
			e.Get("/", expenseHandler.List)
			e.Post("/", expenseHandler.Create)
			e.Get("/{id}", expenseHandler.Get)
			e.Put("/{id}", expenseHandler.Update)
			e.Delete("/{id}", expenseHandler.Delete)
		})

		v.With(authMiddleware.RequireOwner).Get("/reports", reportHandler.Get)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// reportQuerier joins the two repositories behind the report.Querier interface.
type reportQuerier struct {
	orders   repo.OrdersRepo
	expenses repo.ExpensesRepo
}

func (q reportQuerier) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]report.Order, error) {
	return q.orders.ListOrdersBetween(ctx, from, to)
}

func (q reportQuerier) ListExpensesBetween(ctx context.Context, from, to time.Time) ([]report.Expense, error) {
	return q.expenses.ListExpensesBetween(ctx, from, to)
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

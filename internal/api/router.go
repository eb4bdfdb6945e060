package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/spendline/expense-approval/internal/api/handler"
	"github.com/spendline/expense-approval/internal/api/middleware"
	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Identity  ports.IdentityService
	Directory ports.DirectoryService
	Expenses  ports.ExpenseService
	Assistant ports.AssistantService
	Hub       handler.ChangeSubscriber
	Catalog   domain.Catalog
	Health    []handler.DependencyCheck
	JWTSecret string
	Logger    zerolog.Logger
	// Metrics receives the HTTP metrics and backs /metrics. Nil selects
	// the default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "expenses",
		Registerer: registerer(deps.Metrics),
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Identity)
	expenseHandler := handler.NewExpenseHandler(deps.Expenses)
	streamHandler := handler.NewStreamHandler(deps.Expenses, deps.Hub, deps.Logger)
	userHandler := handler.NewUserHandler(deps.Directory)
	assistantHandler := handler.NewAssistantHandler(deps.Assistant)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret, deps.Identity, deps.Logger))
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1.GET("/me", authHandler.Me)
	v1.GET("/catalog", catalogHandler.Get)

	expenses := v1.Group("/expenses")
	expenses.POST("", expenseHandler.Submit)
	expenses.GET("/mine", expenseHandler.Mine)
	expenses.GET("/queue", expenseHandler.Queue)
	expenses.GET("/team", expenseHandler.Team)
	expenses.GET("/company", expenseHandler.Company, adminOnly)
	expenses.GET("/stream", streamHandler.Stream)
	expenses.GET("/:id", expenseHandler.Get)
	expenses.POST("/:id/decision", expenseHandler.Decide)
	expenses.POST("/:id/override", expenseHandler.Override, adminOnly)

	users := v1.Group("/users", adminOnly)
	users.POST("", userHandler.Add)
	users.GET("", userHandler.List)
	users.PATCH("/:id/role", userHandler.ChangeRole)
	users.PATCH("/:id/manager", userHandler.AssignManager)

	assistant := v1.Group("/assistant")
	assistant.POST("/description", assistantHandler.Description)
	assistant.POST("/summary", assistantHandler.Summary)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Health...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer(deps.Metrics)}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Status >= 400:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

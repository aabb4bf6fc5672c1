package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/http/handlers"
	"lawdesk-api/internal/adapters/http/middleware"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/config"
	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/jwt"
)

// Services is the wired service layer
type Services struct {
	Authz       *services.AuthorizationService
	Auth        *services.AuthService
	Users       *services.UserService
	Roles       *services.RoleService
	Permissions *services.PermissionService
	Contacts    *services.ContactService
	Processes   *services.ProcessService
	Tasks       *services.TaskService
	Payments    *services.PaymentService
	Expenses    *services.ExpenseService
	Dashboard   *services.DashboardService
}

// NewServices initializes repositories and services
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	permRepo := repositories.NewPermissionRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	processRepo := repositories.NewProcessRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenMins, cfg.JWT.RefreshTokenDays)

	s := &Services{}
	s.Authz = services.NewAuthorizationService(userRepo, cfg.Authz.FailOpen)
	s.Auth = services.NewAuthService(userRepo, refreshTokenRepo, tokens)
	s.Users = services.NewUserService(db, userRepo, roleRepo, permRepo)
	s.Roles = services.NewRoleService(db, roleRepo, permRepo)
	s.Permissions = services.NewPermissionService(permRepo)
	s.Contacts = services.NewContactService(contactRepo)
	s.Processes = services.NewProcessService(db, processRepo, historyRepo, paymentRepo, expenseRepo, taskRepo, userRepo, contactRepo, s.Authz)
	s.Tasks = services.NewTaskService(db, taskRepo, processRepo, historyRepo)
	s.Payments = services.NewPaymentService(db, paymentRepo, processRepo, historyRepo, s.Authz)
	s.Expenses = services.NewExpenseService(db, expenseRepo, processRepo, historyRepo)
	s.Dashboard = services.NewDashboardService(db, processRepo, taskRepo, expenseRepo, s.Payments, s.Authz)
	return s
}

// route is one guarded endpoint. Its name is also the permission it requires.
type route struct {
	method   string
	path     string
	name     string
	handlers []fiber.Handler
}

func r(method, path, name string, handlers ...fiber.Handler) route {
	return route{method: method, path: path, name: name, handlers: handlers}
}

// mount registers each route behind authentication and the guard, and
// names it so the permission catalogue can be seeded from the router.
func mount(router fiber.Router, auth fiber.Handler, guard *middleware.Guard, table []route) {
	for _, rt := range table {
		chain := append([]fiber.Handler{auth, guard.Require(rt.name)}, rt.handlers...)
		router.Add(rt.method, rt.path, chain...).Name(rt.name)
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, svc *Services, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users, svc.Authz, cfg)
	userHandler := handlers.NewUserHandler(svc.Users)
	roleHandler := handlers.NewRoleHandler(svc.Roles, svc.Permissions)
	contactHandler := handlers.NewContactHandler(svc.Contacts)
	processHandler := handlers.NewProcessHandler(svc.Processes)
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, svc.Processes)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	auth := middleware.AuthMiddleware(svc.Auth)
	guard := middleware.NewGuard(svc.Authz)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := api.Group("/auth", middleware.NoCacheHeaders())
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", middleware.AuthRateLimiter(), authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", auth, authHandler.Me)
	authRoutes.Post("/logout-all", auth, authHandler.LogoutAll)

	visible := processHandler.Visible
	catalogue := middleware.PrivateCacheHeaders(5 * time.Minute)

	mount(api, auth, guard, []route{
		// Users
		r(fiber.MethodGet, "/users", "users.index", userHandler.List),
		r(fiber.MethodPost, "/users", "users.store", userHandler.Create),
		r(fiber.MethodGet, "/users/:id", "users.show", userHandler.Get),
		r(fiber.MethodPut, "/users/:id", "users.update", userHandler.Update),
		r(fiber.MethodDelete, "/users/:id", "users.destroy", userHandler.Delete),
		r(fiber.MethodPut, "/users/:id/roles", "users.roles.sync", userHandler.SyncRoles),
		r(fiber.MethodPut, "/users/:id/permissions", "users.permissions.sync", userHandler.SyncPermissions),

		// Roles & permissions
		r(fiber.MethodGet, "/roles", "roles.index", roleHandler.List),
		r(fiber.MethodPost, "/roles", "roles.store", roleHandler.Create),
		r(fiber.MethodGet, "/roles/:id", "roles.show", roleHandler.Get),
		r(fiber.MethodPut, "/roles/:id", "roles.update", roleHandler.Update),
		r(fiber.MethodDelete, "/roles/:id", "roles.destroy", roleHandler.Delete),
		r(fiber.MethodGet, "/permissions", "permissions.index", catalogue, roleHandler.Permissions),

		// Contacts
		r(fiber.MethodGet, "/contacts", "contacts.index", contactHandler.List),
		r(fiber.MethodPost, "/contacts", "contacts.store", contactHandler.Create),
		r(fiber.MethodGet, "/contacts/:id", "contacts.show", contactHandler.Get),
		r(fiber.MethodPut, "/contacts/:id", "contacts.update", contactHandler.Update),
		r(fiber.MethodDelete, "/contacts/:id", "contacts.destroy", contactHandler.Delete),

		// Processes
		r(fiber.MethodGet, "/processes", "processes.index", processHandler.List),
		r(fiber.MethodPost, "/processes", "processes.store", processHandler.Create),
		r(fiber.MethodGet, "/processes/:id", "processes.show", processHandler.Get),
		r(fiber.MethodPut, "/processes/:id", "processes.update", processHandler.Update),
		r(fiber.MethodDelete, "/processes/:id", "processes.destroy", processHandler.Delete),
		r(fiber.MethodPost, "/processes/:id/archive", "processes.archive", processHandler.Archive),
		r(fiber.MethodPost, "/processes/:id/unarchive", "processes.unarchive", processHandler.Unarchive),
		r(fiber.MethodGet, "/processes/:id/history", "processes.history", processHandler.History),

		// Tasks
		r(fiber.MethodGet, "/processes/:id/tasks", "processes.tasks.index", visible, taskHandler.List),
		r(fiber.MethodPost, "/processes/:id/tasks", "processes.tasks.store", visible, taskHandler.Create),
		r(fiber.MethodPost, "/processes/:id/tasks/:taskId/complete", "processes.tasks.complete", visible, taskHandler.Complete),
		r(fiber.MethodDelete, "/processes/:id/tasks/:taskId", "processes.tasks.destroy", visible, taskHandler.Delete),

		// Ledger
		r(fiber.MethodGet, "/processes/:id/payments", "processes.payments.index", visible, paymentHandler.ListByProcess),
		r(fiber.MethodPost, "/processes/:id/payments", "processes.payments.store", visible, paymentHandler.Create),
		r(fiber.MethodGet, "/processes/:id/payments/schedule", "processes.payments.schedule", visible, paymentHandler.Schedule),
		r(fiber.MethodGet, "/payments", "payments.index", paymentHandler.List),
		r(fiber.MethodGet, "/payments/summary", "payments.summary", middleware.NoCacheHeaders(), paymentHandler.Summary),
		r(fiber.MethodGet, "/payments/plans/:groupId", "payments.plan", paymentHandler.Plan),
		r(fiber.MethodGet, "/payments/:id", "payments.show", paymentHandler.Get),
		r(fiber.MethodPut, "/payments/:id", "payments.update", paymentHandler.Update),
		r(fiber.MethodDelete, "/payments/:id", "payments.destroy", paymentHandler.Delete),

		// Expenses
		r(fiber.MethodGet, "/processes/:id/expenses", "processes.expenses.index", visible, expenseHandler.List),
		r(fiber.MethodPost, "/processes/:id/expenses", "processes.expenses.store", visible, expenseHandler.Create),
		r(fiber.MethodPut, "/processes/:id/expenses/:expenseId", "processes.expenses.update", visible, expenseHandler.Update),
		r(fiber.MethodDelete, "/processes/:id/expenses/:expenseId", "processes.expenses.destroy", visible, expenseHandler.Delete),

		// Dashboard
		r(fiber.MethodGet, "/dashboard", "dashboard.index", dashboardHandler.Get),
	})
}

// Names lists every named route, which is the full permission catalogue
func Names(app *fiber.App) []string {
	var names []string
	for _, rt := range app.GetRoutes(true) {
		if rt.Name != "" {
			names = append(names, rt.Name)
		}
	}
	return names
}

// SyncPermissions creates a permission for every named route that lacks one
func SyncPermissions(ctx context.Context, app *fiber.App, permissions *services.PermissionService) (int, error) {
	return permissions.SyncFromRoutes(ctx, Names(app))
}

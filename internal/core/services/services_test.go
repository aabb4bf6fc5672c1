package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/pkg/jwt"
	"lawdesk-api/internal/testutil"
)

var fixedNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

type env struct {
	db *gorm.DB

	authz       *AuthorizationService
	auth        *AuthService
	users       *UserService
	roles       *RoleService
	permissions *PermissionService
	contacts    *ContactService
	processes   *ProcessService
	tasks       *TaskService
	payments    *PaymentService
	expenses    *ExpenseService
	dashboard   *DashboardService

	admin  *models.User
	lawyer *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	permRepo := repositories.NewPermissionRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	processRepo := repositories.NewProcessRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)

	clock := func() time.Time { return fixedNow }

	e := &env{db: db}
	e.authz = NewAuthorizationService(userRepo, false)
	e.auth = NewAuthService(userRepo, tokenRepo, jwt.NewManager("access-secret", "refresh-secret", 15, 7))
	e.users = NewUserService(db, userRepo, roleRepo, permRepo).WithBcryptCost(4)
	e.roles = NewRoleService(db, roleRepo, permRepo)
	e.permissions = NewPermissionService(permRepo)
	e.contacts = NewContactService(contactRepo)
	e.processes = NewProcessService(db, processRepo, historyRepo, paymentRepo, expenseRepo, taskRepo, userRepo, contactRepo, e.authz)
	e.processes.now = clock
	e.tasks = NewTaskService(db, taskRepo, processRepo, historyRepo)
	e.tasks.now = clock
	e.payments = NewPaymentService(db, paymentRepo, processRepo, historyRepo, e.authz).WithClock(clock)
	e.expenses = NewExpenseService(db, expenseRepo, processRepo, historyRepo)
	e.dashboard = NewDashboardService(db, processRepo, taskRepo, expenseRepo, e.payments, e.authz).WithClock(clock)

	adminRole := testutil.Role(t, db, "Admin", 10)
	lawyerRole := testutil.Role(t, db, "Lawyer", 3)
	e.admin = testutil.User(t, db, "admin@lawdesk.test", adminRole)
	e.lawyer = testutil.User(t, db, "lawyer@lawdesk.test", lawyerRole)
	return e
}

func (e *env) actor(u *models.User) Actor {
	return Actor{UserID: u.ID, IP: "127.0.0.1"}
}

func countRows(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

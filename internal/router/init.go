package router

import (
	"github.com/foundly/foundly-api/internal/application"
	"github.com/foundly/foundly-api/internal/container"
	pginfra "github.com/foundly/foundly-api/internal/infrastructure/postgres"
	handlers "github.com/foundly/foundly-api/internal/interface/http"
	"github.com/foundly/foundly-api/internal/router/modules"
)

type Deps struct {
	Users *application.UsersService
	Auth  *application.AuthService

	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	AdminHandler  *handlers.AdminHandler
	EmailHandler  *handlers.EmailHandler
	HealthHandler *handlers.HealthHandler
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	users := application.NewUsersService(
		repo,
		container.GetRedis(),
		logger,
		container.GetES(),
		cfg.ESUsersIndex,
		cfg.CacheTTL,
	)
	auth := application.NewAuthService(
		users,
		container.GetJWT(),
		container.GetRedis(),
		container.GetStorage(),
		logger,
	)

	return Deps{
		Users:         users,
		Auth:          auth,
		AuthHandler:   handlers.NewAuthHandler(auth, users, container.GetRedis(), logger, cfg, container.GetRabbitPub()),
		UserHandler:   handlers.NewUserHandler(users, auth, logger),
		AdminHandler:  handlers.NewAdminHandler(users, logger),
		EmailHandler:  handlers.NewEmailHandler(container.GetRabbitPub(), logger),
		HealthHandler: handlers.NewHealthHandler(container.GetPGPool(), container.GetRedis()),
	}
}

// InitModules wires every feature module into the registry. Called once
// during startup.
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()

	r.Add(modules.NewHealthModule(deps.HealthHandler))
	r.Add(modules.NewAuthModule(deps.AuthHandler, jwt))
	r.Add(modules.NewUserModule(deps.UserHandler, jwt))
	r.Add(modules.NewAdminModule(deps.AdminHandler, deps.EmailHandler, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

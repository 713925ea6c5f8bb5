package routes

import (
	"moimhub/internal/adapters/http/handlers"
	"moimhub/internal/adapters/http/middleware"
	"moimhub/internal/adapters/persistence/repositories"
	"moimhub/internal/config"
	"moimhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	memberRepo := repositories.NewMemberRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	loginCodeRepo := repositories.NewLoginCodeRepository(db)
	affiliationRepo := repositories.NewAffiliationRepository(db)
	organizationRepo := repositories.NewOrganizationRepository(db)
	generationRepo := repositories.NewGenerationRepository(db)
	positionRepo := repositories.NewPositionRepository(db)

	// Initialize services
	authService := services.NewAuthService(db, memberRepo, refreshTokenRepo, loginCodeRepo, affiliationRepo, cfg)
	memberService := services.NewMemberService(db, memberRepo, affiliationRepo, generationRepo)
	organizationService := services.NewOrganizationService(db, organizationRepo, generationRepo)
	positionService := services.NewPositionService(db, positionRepo, generationRepo, affiliationRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, memberService, cfg)
	mobileHandler := handlers.NewMobileHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService)
	organizationHandler := handlers.NewOrganizationHandler(organizationService)
	positionHandler := handlers.NewPositionHandler(positionService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	setupMobileRoutes(apiV1.Group("/mobile"), mobileHandler, cfg)
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)
	setupAdminRoutes(apiV1, memberHandler, organizationHandler, positionHandler, cfg)
}

// setupMobileRoutes configures the mobile app's token endpoints
func setupMobileRoutes(router fiber.Router, h *handlers.MobileHandler, cfg *config.Config) {
	router.Post("/login", middleware.AuthRateLimiter(), h.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), h.Refresh)
	router.Post("/logout", h.Logout)
	router.Post("/web-session-code", middleware.StrictRateLimiter(), middleware.AuthMiddleware(cfg), h.WebSessionCode)
}

// setupAuthRoutes configures the web (cookie) auth endpoints
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, cfg *config.Config) {
	router.Post("/login", middleware.AuthRateLimiter(), h.Login)
	router.Post("/register", middleware.AuthRateLimiter(), h.Register)
	router.Post("/refresh", h.Refresh)
	router.Post("/logout", h.Logout)

	// protected
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), h.LogoutAll)
	router.Get("/me", middleware.AuthMiddleware(cfg), h.Me)
	router.Post("/setup-password", middleware.StrictRateLimiter(), middleware.AuthMiddleware(cfg), h.SetupPassword)
}

// setupAdminRoutes configures the management endpoints. Reads need a valid
// token; writes need the ADMIN role.
func setupAdminRoutes(
	router fiber.Router,
	memberHandler *handlers.MemberHandler,
	organizationHandler *handlers.OrganizationHandler,
	positionHandler *handlers.PositionHandler,
	cfg *config.Config,
) {
	auth := middleware.AuthMiddleware(cfg)
	admin := middleware.AdminOnly()

	// Organizations and generations
	orgs := router.Group("/organizations", auth)
	orgs.Get("/", organizationHandler.List)
	orgs.Post("/", admin, organizationHandler.Create)
	orgs.Get("/:id", organizationHandler.Get)
	orgs.Delete("/:id", admin, organizationHandler.Delete)
	orgs.Get("/:id/generations", organizationHandler.ListGenerations)
	orgs.Post("/:id/generations", admin, organizationHandler.CreateGeneration)
	orgs.Post("/:id/generations/:genId/primary", admin, organizationHandler.SetPrimaryGeneration)
	orgs.Delete("/:id/generations/:genId", admin, organizationHandler.DeleteGeneration)
	orgs.Get("/:id/members", admin, memberHandler.List)

	// Members
	members := router.Group("/members", auth)
	members.Patch("/me", memberHandler.UpdateProfile)
	members.Post("/", admin, memberHandler.Create)
	members.Post("/bulk", admin, memberHandler.BulkCreate)
	members.Patch("/:id", admin, memberHandler.Update)
	members.Delete("/:id", admin, memberHandler.Delete)

	// Affiliations
	affs := router.Group("/affiliations", auth, admin)
	affs.Post("/:id/approve", memberHandler.Approve)
	affs.Post("/:id/reject", memberHandler.Reject)
	affs.Patch("/:id/role", memberHandler.ChangeRole)
	affs.Patch("/:id/position", positionHandler.Assign)

	// Positions
	gens := router.Group("/generations", auth)
	gens.Get("/:genId/positions", positionHandler.Tree)
	gens.Post("/:genId/positions/clone", admin, positionHandler.Clone)

	positions := router.Group("/positions", auth, admin)
	positions.Post("/", positionHandler.Create)
	positions.Patch("/:id", positionHandler.Update)
	positions.Delete("/:id", positionHandler.Delete)
}

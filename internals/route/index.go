package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"admissions_backend/internals/configs"
	paymentRoute "admissions_backend/internals/features/finance/payments/route"
	receiptService "admissions_backend/internals/features/finance/receipts/service"
	authService "admissions_backend/internals/features/users/auth/service"
	helperAuth "admissions_backend/internals/helpers/auth"
	"admissions_backend/internals/helpers/mailer"
	"admissions_backend/internals/helpers/pdf"
	"admissions_backend/internals/helpers/storage"
	"admissions_backend/internals/logger"
	authMiddleware "admissions_backend/internals/middlewares/auth"
	routeDetails "admissions_backend/internals/route/details"
)

var startTime time.Time

// Deps are the shared clients built in main. Redis may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  storage.Store
	Mailer mailer.Mailer
	PDF    pdf.Renderer
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	auth := authService.New(d.DB, configs.JWTSecret, configs.JWTRefreshSecret, configs.GoogleClientID)
	protect := authMiddleware.AuthJWT(authMiddleware.Config{
		Secret:     configs.JWTSecret,
		Blacklist:  helperAuth.NewDBBlacklist(d.DB, configs.JWTSecret),
		UserActive: authMiddleware.UserActiveFromDB(d.DB),
	})

	// ===================== AUTH =====================
	logger.Info("[ROUTES] auth")
	routeDetails.AuthRoutes(app, auth, protect)

	receipts := receiptService.New(d.DB, d.PDF, d.Store, d.Mailer, configs.AppName)
	payments := paymentRoute.NewPaymentService(d.DB, receipts)

	// ===================== PUBLIC =====================
	logger.Info("[ROUTES] public")
	public := app.Group("/api/public")
	routeDetails.AdmissionsPublicRoutes(public, d.DB)
	routeDetails.FinancePublicRoutes(public, payments)

	// ===================== STAFF =====================
	logger.Info("[ROUTES] staff")
	admin := app.Group("/api/a", protect)
	routeDetails.AdmissionsAdminRoutes(admin, d.DB, d.Store)
	routeDetails.FinanceAdminRoutes(admin, d.DB, d.Redis, d.Mailer, payments, receipts)
	routeDetails.UserAdminRoutes(admin, auth)
}

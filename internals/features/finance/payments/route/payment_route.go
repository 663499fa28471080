package route

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"admissions_backend/internals/configs"
	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/finance/payments/controller"
	"admissions_backend/internals/features/finance/payments/service"
	receiptService "admissions_backend/internals/features/finance/receipts/service"
	"admissions_backend/internals/logger"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

// NewPaymentService wires Midtrans from env and sends receipts once a payment is paid.
func NewPaymentService(db *gorm.DB, receipts *receiptService.ReceiptService) *service.PaymentService {
	var gw service.Gateway
	if key := strings.TrimSpace(configs.MidtransServerKey); key != "" {
		gw = service.NewSnapGateway(key, configs.MidtransUseProd)
	} else {
		logger.Warn("MIDTRANS_SERVER_KEY not set, online payments disabled")
	}
	svc := service.New(db, gw, configs.MidtransServerKey)
	if receipts != nil {
		svc.OnPaid = func(ctx context.Context, id uuid.UUID) {
			if err := receipts.Deliver(ctx, id); err != nil {
				logger.Warn("receipt delivery failed", zap.String("payment_id", id.String()), zap.Error(err))
			}
		}
	}
	return svc
}

func PaymentRoutes(api fiber.Router, svc *service.PaymentService) {
	h := controller.NewPaymentController(svc)
	cashiers := authMiddleware.OnlyRoles(constants.RoleError("payments", constants.Cashiers), constants.Cashiers...)
	feeDesk := authMiddleware.OnlyRoles(constants.RoleError("payments", constants.FeeDesk), constants.FeeDesk...)

	fee := api.Group("/student-fees/:id")
	fee.Post("/payments", feeDesk, h.Create)
	fee.Get("/payments", feeDesk, h.ListForFee)
	fee.Get("/balance", feeDesk, h.Balance)

	pay := api.Group("/payments")
	pay.Get("/", feeDesk, h.List)
	pay.Get("/:payment_id", feeDesk, h.Get)
	pay.Patch("/:payment_id/confirm", cashiers, h.Confirm)
	pay.Patch("/:payment_id/cancel", cashiers, h.Cancel)
}

// PublicPaymentRoutes takes gateway callbacks; authenticity is the notification signature.
func PublicPaymentRoutes(public fiber.Router, svc *service.PaymentService) {
	h := controller.NewPaymentController(svc)
	public.Post("/payments/midtrans/notification", h.MidtransWebhook)
}

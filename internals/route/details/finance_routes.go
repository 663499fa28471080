package details

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	paymentRoute "admissions_backend/internals/features/finance/payments/route"
	paymentService "admissions_backend/internals/features/finance/payments/service"
	receiptRoute "admissions_backend/internals/features/finance/receipts/route"
	receiptService "admissions_backend/internals/features/finance/receipts/service"
	feeRoute "admissions_backend/internals/features/finance/student_fees/route"
	"admissions_backend/internals/helpers/mailer"
)

func FinancePublicRoutes(public fiber.Router, payments *paymentService.PaymentService) {
	paymentRoute.PublicPaymentRoutes(public, payments)
}

func FinanceAdminRoutes(
	admin fiber.Router,
	db *gorm.DB,
	rdb *redis.Client,
	m mailer.Mailer,
	payments *paymentService.PaymentService,
	receipts *receiptService.ReceiptService,
) {
	feeRoute.StudentFeeRoutes(admin, db, rdb, m)
	paymentRoute.PaymentRoutes(admin, payments)
	receiptRoute.ReceiptRoutes(admin, receipts)
}

package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/pkg/errors"

	"admissions_backend/internals/features/finance/payments/model"
)

// Checkout is what the gateway needs to open a payment page.
type Checkout struct {
	OrderID     string
	Amount      int64
	ItemName    string
	Category    string
	StudentName string
	Email       string
	Phone       string
}

// Gateway opens hosted payment pages.
type Gateway interface {
	CreateTransaction(ctx context.Context, in Checkout) (token, redirectURL string, err error)
}

// SnapGateway is the Midtrans Snap client.
type SnapGateway struct {
	client snap.Client
}

func NewSnapGateway(serverKey string, production bool) *SnapGateway {
	g := &SnapGateway{}
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g.client.New(serverKey, env)
	return g
}

func (g *SnapGateway) CreateTransaction(_ context.Context, in Checkout) (string, string, error) {
	if in.Amount <= 0 {
		return "", "", errors.New("invalid gross amount")
	}
	if in.OrderID == "" {
		return "", "", errors.New("order id is required")
	}
	first, last := splitName(in.StudentName)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderID,
			GrossAmt: in.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: in.Email,
			Phone: in.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       in.OrderID,
			Price:    in.Amount,
			Qty:      1,
			Name:     truncate(in.ItemName, 50),
			Category: in.Category,
		}},
	}
	resp, merr := g.client.CreateTransaction(req)
	if merr != nil {
		return "", "", errors.Wrap(merr, "midtrans create transaction")
	}
	return resp.Token, resp.RedirectURL, nil
}

// Notification is the Midtrans HTTP notification body.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`
}

// Signature is SHA512(order_id + status_code + gross_amount + server_key), hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(n Notification, serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// MappedFields are the timestamps a status change sets.
type MappedFields struct {
	PaidAt     *time.Time
	CanceledAt *time.Time
	FailedAt   *time.Time
	RefundedAt *time.Time
}

// MapMidtransStatus converts a gateway status to ours. Unknown statuses keep current.
func MapMidtransStatus(current model.PaymentStatus, transactionStatus, fraudStatus string, now time.Time) (model.PaymentStatus, MappedFields) {
	ts := strings.ToLower(transactionStatus)
	fraud := strings.ToLower(fraudStatus)

	switch ts {
	case "capture":
		if fraud == "accept" || fraud == "" {
			return model.PaymentStatusPaid, MappedFields{PaidAt: &now}
		}
		if fraud == "challenge" {
			return model.PaymentStatusAwaitingCallback, MappedFields{}
		}
		return model.PaymentStatusFailed, MappedFields{FailedAt: &now}
	case "settlement":
		return model.PaymentStatusPaid, MappedFields{PaidAt: &now}
	case "pending":
		return model.PaymentStatusPending, MappedFields{}
	case "deny", "failure":
		return model.PaymentStatusFailed, MappedFields{FailedAt: &now}
	case "cancel":
		return model.PaymentStatusCanceled, MappedFields{CanceledAt: &now}
	case "expire":
		return model.PaymentStatusExpired, MappedFields{}
	case "refund":
		return model.PaymentStatusRefunded, MappedFields{RefundedAt: &now}
	case "partial_refund":
		return model.PaymentStatusPartiallyRefunded, MappedFields{RefundedAt: &now}
	}
	return current, MappedFields{}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

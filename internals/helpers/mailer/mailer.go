package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"admissions_backend/internals/configs"
	"admissions_backend/internals/logger"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          []mail.Address
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns SendGrid when SENDGRID_API_KEY is set, else the console mailer.
func New() Mailer {
	if strings.TrimSpace(configs.SendgridAPIKey) == "" {
		return Console{}
	}
	return NewSendgrid(configs.SendgridAPIKey, configs.MailFrom, configs.AppName)
}

/* ===================== SendGrid ===================== */

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type Sendgrid struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgrid(key, from, appName string) *Sendgrid {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		addr = &mail.Address{Name: appName, Address: from}
	}
	return &Sendgrid{
		key:        key,
		from:       sgmail.NewEmail(addr.Name, addr.Address),
		subjPrefix: "[" + appName + "] ",
	}
}

func (s *Sendgrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	for _, a := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}
	return m
}

func (s *Sendgrid) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

/* ===================== Console ===================== */

// Console logs the message instead of delivering it (local dev).
type Console struct{}

func (Console) Send(_ context.Context, msg Message) error {
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.String())
	}
	logger.Info("mail (console)",
		zap.String("to", strings.Join(to, ", ")),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}

/* ===================== Memory ===================== */

// Memory records sent messages for assertions.
type Memory struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (m *Memory) Send(_ context.Context, msg Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *Memory) Last() (Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Message{}, fmt.Errorf("no mail sent")
	}
	return m.Sent[len(m.Sent)-1], nil
}

package mailer

import (
	"context"
	"encoding/base64"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendgridPrepare(t *testing.T) {
	sg := NewSendgrid("key", "Admissions Office <office@college.test>", "Admissions")
	m := sg.prepare(Message{
		To:      []mail.Address{{Name: "Asha", Address: "asha@example.com"}},
		Subject: "Fee receipt",
		Text:    "attached",
		Attachments: []Attachment{
			{Filename: "receipt.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		},
	})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Admissions] Fee receipt", m.Personalizations[0].Subject)
	assert.Equal(t, "asha@example.com", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "office@college.test", m.From.Address)
	assert.Equal(t, "Admissions Office", m.From.Name)
	require.Len(t, m.Content, 1)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), m.Attachments[0].Content)
}

func TestSendgridRequiresRecipients(t *testing.T) {
	sg := NewSendgrid("key", "office@college.test", "Admissions")
	assert.Error(t, sg.Send(context.Background(), Message{Subject: "x"}))
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	_, err := m.Last()
	assert.Error(t, err)

	require.NoError(t, m.Send(context.Background(), Message{Subject: "otp"}))
	last, err := m.Last()
	require.NoError(t, err)
	assert.Equal(t, "otp", last.Subject)
}

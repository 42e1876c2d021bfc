package emailsvc

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core"
)

func newMessage(to string) *core.EmailMessage {
	return &core.EmailMessage{
		To:      []mail.Address{{Name: "Hero", Address: to}},
		Subject: "Fee reminder",
		BodyStr: "Your fees are due.",
		Attachments: []core.Attachment{
			{Content: bytes.NewBufferString("JVBERi0="), ContentType: "application/pdf", Filename: "invoice.pdf"},
		},
	}
}

func TestConsoleService(t *testing.T) {
	out := new(bytes.Buffer)
	outbox := new(Outbox)
	svc := &consoleService{
		from:       mail.Address{Name: "School SaaS", Address: "noreply@test.in"},
		subjPrefix: "[School SaaS] ",
		out:        out,
		sync:       true,
		outbox:     outbox,
	}

	svc.SendMessages(newMessage("hero@test.in"), &core.EmailMessage{Subject: "nobody"})

	printed := out.String()
	assert.Contains(t, printed, `To: "Hero" <hero@test.in>`)
	assert.Contains(t, printed, "Subject: [School SaaS] Fee reminder")
	assert.Contains(t, printed, "Your fees are due.")
	assert.Contains(t, printed, "[attachment: invoice.pdf (application/pdf)]")

	msg, ok := outbox.LastTo("HERO@test.in")
	require.True(t, ok)
	assert.Equal(t, "Fee reminder", msg.Subject)
	assert.Equal(t, "Your fees are due.", msg.TextContent)

	_, ok = outbox.LastTo("nobody@test.in")
	assert.False(t, ok)
}

func TestSendgridService_build(t *testing.T) {
	svc := NewSendgridService(&core.Config{
		AppName:          "School SaaS",
		Env:              "QA",
		DefaultFromEmail: mail.Address{Name: "School SaaS", Address: "noreply@test.in"},
	}, nil)

	msg := newMessage("hero@test.in")
	msg.Cc = []mail.Address{{Address: "parent@test.in"}}
	msg.TemplateName = "password_reset"
	require.NoError(t, msg.Render())

	m := svc.build(msg)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[School SaaS] Fee reminder", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "hero@test.in", p.To[0].Address)
	require.Len(t, p.CC, 1)
	assert.Equal(t, "noreply@test.in", m.From.Address)
	assert.Equal(t, []string{"QA", "password_reset"}, m.Categories)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "invoice.pdf", m.Attachments[0].Filename)
}

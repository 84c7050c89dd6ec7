package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursebox/backend/core"
)

var testConf = &core.Config{
	AppName:          "Coursebox",
	DefaultFromEmail: "noreply@coursebox.test",
	FrontendBaseURL:  "https://coursebox.test/",
	SendgridAPIKey:   "SG.key",
}

type recipient struct {
	Email    string
	FullName string
	Notes    string
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(testConf)

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Address: "ada@example.com"}},
			Subject:      "Your access was approved",
			TemplateName: "access_approved",
			TemplateData: recipient{Email: "ada@example.com", FullName: "Ada"},
		},
		&core.EmailMessage{ // no recipient
			Subject: "dropped",
			BodyStr: "hello",
		},
		&core.EmailMessage{
			To:           []mail.Address{{Address: "x@example.com"}},
			TemplateName: "no_such_template",
		},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Hi Ada,")
	assert.Contains(t, sent[0].TextContent, "https://coursebox.test")
	assert.Contains(t, sent[0].HTMLContent, "Ada")

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func TestEmailTemplates(t *testing.T) {
	tests := []struct {
		template string
		data     recipient
		want     []string
	}{
		{template: "access_requested", data: recipient{Email: "bob@example.com", FullName: "Bob", Notes: "TA"}, want: []string{"Bob (bob@example.com) requested access", "Notes: TA", "/UserManagement"}},
		{template: "access_requested", data: recipient{Email: "bob@example.com"}, want: []string{"bob@example.com requested access"}},
		{template: "access_approved", data: recipient{Email: "bob@example.com"}, want: []string{"Hi bob@example.com,", "approved"}},
		{template: "access_rejected", data: recipient{Email: "bob@example.com", FullName: "Bob"}, want: []string{"Hi Bob,", "not approved"}},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			msg := &core.EmailMessage{TemplateName: tt.template, TemplateData: tt.data}
			require.NoError(t, msg.Render(core.NewSiteInfo(testConf)))
			for _, w := range tt.want {
				assert.Contains(t, msg.TextContent, w)
			}
			assert.NotEmpty(t, msg.HTMLContent)
		})
	}
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConf, core.NopLogger()).(*sendgridService)
	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Ada", Address: "ada@example.com"}},
		Cc:          []mail.Address{{Address: "cc@example.com"}},
		Subject:     "Hello",
		TextContent: "text",
	})

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Coursebox] Hello", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "ada@example.com", p.To[0].Address)
	assert.Len(t, p.CC, 1)
	assert.Equal(t, "noreply@coursebox.test", m.From.Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &consoleService{}, New(&core.Config{Debug: true, SendgridAPIKey: "k"}, core.NopLogger()))
	assert.IsType(t, &consoleService{}, New(&core.Config{}, core.NopLogger()))
	assert.IsType(t, &sendgridService{}, New(&core.Config{SendgridAPIKey: "k"}, core.NopLogger()))
}

func TestWait(t *testing.T) {
	svc := NewConsoleService(testConf, core.NopLogger())
	svc.(*consoleService).disableOutput = true

	for i := 0; i < 5; i++ {
		svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "ada@example.com"}}, BodyStr: "hello"})
	}
	Wait(svc) // returns once every background send is done
	Wait(NewConsoleServiceMock(testConf))
}

package emailsvc

import (
	"fmt"
	"io"
	"log"
	"net/mail"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/schoolsaas/core"
)

// Outbox records the messages handled by the console services.
type Outbox struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

func (o *Outbox) add(msg core.EmailMessage) {
	o.mu.Lock()
	o.messages = append(o.messages, msg)
	o.mu.Unlock()
}

// LastTo returns the last message sent to addr, if any.
func (o *Outbox) LastTo(addr string) (core.EmailMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		for _, to := range o.messages[i].To {
			if strings.EqualFold(to.Address, addr) {
				return o.messages[i], true
			}
		}
	}
	return core.EmailMessage{}, false
}

var sent = new(Outbox)

// LastMessageTo looks addr up in the outbox shared by every console service.
func LastMessageTo(addr string) (core.EmailMessage, bool) {
	return sent.LastTo(addr)
}

type consoleService struct {
	from       mail.Address
	subjPrefix string
	out        io.Writer // nil: no output
	sync       bool
	outbox     *Outbox
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService prints a summary of every email to stdout instead of sending it. It is used in debug mode.
func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		from:       conf.DefaultFromEmail,
		subjPrefix: "[" + conf.AppName + "] ",
		out:        os.Stdout,
		outbox:     sent,
	}
}

// NewConsoleServiceMock delivers synchronously and silently.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		from:       conf.DefaultFromEmail,
		subjPrefix: "[" + conf.AppName + "] ",
		sync:       true,
		outbox:     sent,
	}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sync {
			svc.deliver(msg)
			continue
		}
		go svc.deliver(msg)
	}
}

func (svc *consoleService) deliver(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		log.Printf("emailsvc: rendering %q: %v", msg.TemplateName, err)
		return
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		return
	}
	svc.print(*msg)
	svc.outbox.add(*msg)
}

func (svc *consoleService) print(msg core.EmailMessage) {
	if svc.out == nil {
		return
	}

	b := new(strings.Builder)
	fmt.Fprintln(b, "---------- email ----------")
	fmt.Fprintf(b, "From: %s\n", svc.from.String())
	fmt.Fprintf(b, "To: %s\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(b, "Cc: %s\n", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		fmt.Fprintf(b, "Bcc: %s\n", joinAddresses(msg.Bcc))
	}
	fmt.Fprintf(b, "Subject: %s%s\n", svc.subjPrefix, msg.Subject)
	fmt.Fprintf(b, "Date: %s\n\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintln(b, strings.TrimSpace(msg.TextContent))
	if msg.HTMLContent != "" {
		fmt.Fprintf(b, "\n[text/html alternative: %d bytes]\n", len(msg.HTMLContent))
	}
	for _, at := range msg.Attachments {
		fmt.Fprintf(b, "[attachment: %s (%s)]\n", at.Filename, at.ContentType)
	}
	fmt.Fprintln(b, "---------------------------")

	_, _ = io.WriteString(svc.out, b.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, a := range addrs {
		strs = append(strs, a.String())
	}
	return strings.Join(strs, ", ")
}

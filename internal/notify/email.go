package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"text/tabwriter"

	"github.com/jhillyerd/enmime"
)

// SMTPConfig configures EmailNotifier
type SMTPConfig struct {
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	From       string   `mapstructure:"from"`
	FromName   string   `mapstructure:"from_name"`
	Recipients []string `mapstructure:"recipients"`
}

// Enabled reports whether enough is configured to send mail
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// EmailNotifier sends a multipart text/HTML summary over SMTP
type EmailNotifier struct {
	config SMTPConfig
	sender enmime.Sender
}

// NewEmailNotifier creates an EmailNotifier. sender may be nil to use SMTP from config.
func NewEmailNotifier(config SMTPConfig, sender enmime.Sender) (*EmailNotifier, error) {
	if config.From == "" {
		return nil, errors.New("email notifier: from address is required")
	}
	if sender == nil {
		if config.Host == "" {
			return nil, errors.New("email notifier: smtp host is required")
		}
		port := config.Port
		if port == 0 {
			port = 587
		}
		var auth smtp.Auth
		if config.Username != "" {
			auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
		}
		sender = enmime.NewSMTP(fmt.Sprintf("%s:%d", config.Host, port), auth)
	}
	return &EmailNotifier{config: config, sender: sender}, nil
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	recipients := mergeRecipients(e.config.Recipients, n.Recipients)
	if len(recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := renderHTML(n)
	if err != nil {
		return err
	}

	b := enmime.Builder().
		From(e.config.FromName, e.config.From).
		Subject(fmt.Sprintf("Zmiana cen: %s (%d)", n.ProducerName, n.Summary.TotalChanges)).
		Text([]byte(renderText(n))).
		HTML(html)
	for _, r := range recipients {
		b = b.To("", r)
	}

	if err := b.Send(e.sender); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}

func mergeRecipients(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, r := range list {
			r = strings.TrimSpace(r)
			if r == "" || seen[strings.ToLower(r)] {
				continue
			}
			seen[strings.ToLower(r)] = true
			out = append(out, r)
		}
	}
	return out
}

func renderText(n Notification) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Producent: %s\nZmiany: %d (wzrost %d, spadek %d, średnio %.1f%%)\n\n",
		n.ProducerName, n.Summary.TotalChanges, n.Summary.Increased, n.Summary.Decreased, n.Summary.AvgChangePercent)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Model\tKategoria\tZmiany\tŚrednio")
	for _, m := range n.Models {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\n", m.Product, m.Category, m.Changes, m.AvgChangePercent)
	}
	w.Flush()
	return buf.String()
}

var htmlBody = template.Must(template.New("email").Parse(`<p>Producent: <b>{{.ProducerName}}</b></p>
<p>Zmiany: {{.Summary.TotalChanges}} (wzrost {{.Summary.Increased}}, spadek {{.Summary.Decreased}}, średnio {{printf "%.1f" .Summary.AvgChangePercent}}%)</p>
<table border="1" cellpadding="4">
<tr><th>Model</th><th>Kategoria</th><th>Zmiany</th><th>Średnio</th></tr>
{{range .Models}}<tr><td>{{.Product}}</td><td>{{.Category}}</td><td>{{.Changes}}</td><td>{{printf "%.1f" .AvgChangePercent}}%</td></tr>
{{end}}</table>
`))

func renderHTML(n Notification) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, n); err != nil {
		return nil, fmt.Errorf("failed to render email: %w", err)
	}
	return buf.Bytes(), nil
}

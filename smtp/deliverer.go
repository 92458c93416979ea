// Package smtp delivers built documents to the device address over
// authenticated SMTP. Gmail's implicit-TLS submission endpoint is the
// default transport.
package smtp

import (
	"bytes"
	"context"

	"github.com/wneessen/go-mail"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Body is the plain-text body accompanying every delivery. Kindle
// ignores it; mail clients show it when browsing the sent folder.
const Body = "Sent via Kindle Beam"

// Ensure Deliverer implements kindlebeam.Deliverer at compile time.
var _ kindlebeam.Deliverer = (*Deliverer)(nil)

// SendFunc transmits an assembled message. The default opens an SMTP
// session per call; tests substitute one that records the message.
type SendFunc func(ctx context.Context, msg *mail.Msg) error

// Deliverer sends attachments by SMTP using the credentials and device
// address from the configuration.
type Deliverer struct {
	cfg  *kindlebeam.Config
	send SendFunc
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithSendFunc overrides the transport used to transmit messages.
func WithSendFunc(fn SendFunc) Option {
	return func(d *Deliverer) {
		d.send = fn
	}
}

// NewDeliverer creates a Deliverer from a validated configuration.
func NewDeliverer(cfg *kindlebeam.Config, opts ...Option) (*Deliverer, error) {
	if cfg == nil {
		return nil, kindlebeam.Errorf(kindlebeam.ECONFIG, "no configuration provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Deliverer{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.send == nil {
		d.send = d.dialAndSend
	}
	return d, nil
}

// Deliver builds the message and sends it in a single SMTP session.
// All transport failures are reported as EDELIVERY.
func (d *Deliverer) Deliver(ctx context.Context, article *kindlebeam.Article, att *kindlebeam.Attachment) error {
	if att == nil || len(att.Data) == 0 {
		return kindlebeam.Errorf(kindlebeam.EINVALID, "no document to deliver")
	}

	msg, err := NewMessage(d.cfg, article, att)
	if err != nil {
		return err
	}

	if err := d.send(ctx, msg); err != nil {
		return kindlebeam.Errorf(kindlebeam.EDELIVERY, "sending to %s failed: %v", d.cfg.KindleEmail, err)
	}
	return nil
}

// NewMessage assembles the delivery message: subject from the article
// title, a fixed plain-text body, and the document attached under its
// sanitized filename.
func NewMessage(cfg *kindlebeam.Config, article *kindlebeam.Article, att *kindlebeam.Attachment) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(cfg.From()); err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.ECONFIG, "invalid sender address %q: %v", cfg.From(), err)
	}
	if err := msg.To(cfg.KindleEmail); err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.ECONFIG, "invalid kindle address %q: %v", cfg.KindleEmail, err)
	}

	msg.Subject(article.DisplayTitle())
	msg.SetBodyString(mail.TypeTextPlain, Body)

	if err := msg.AttachReader(att.Filename, bytes.NewReader(att.Data),
		mail.WithFileContentType(mail.ContentType(att.MediaType))); err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EINTERNAL, "attach %s: %v", att.Filename, err)
	}
	return msg, nil
}

func (d *Deliverer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(d.cfg.Host(),
		mail.WithPort(d.cfg.Port()),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(d.cfg.SMTPUser),
		mail.WithPassword(d.cfg.SMTPPass),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

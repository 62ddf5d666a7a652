// Package smtpd implements push-based email ingestion: an SMTP listener
// that accepts mail (for example from a postfix content filter or a relay
// rule) and queues it for the triage pipeline. It is the alternative to
// polling a Gmail mailbox.
package smtpd

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"go.uber.org/zap"
)

// Ingest is an SMTP server that implements core.EmailSource over the
// messages it has accepted. IDs are assigned on receipt; ListIDs returns
// pending IDs in arrival order and Fetch consumes them.
type Ingest struct {
	server *smtp.Server
	logger *zap.Logger

	mu      sync.Mutex
	pending []string
	queued  map[string]*core.EmailRecord
	nextSeq int
}

// NewIngest creates an SMTP ingestion source from the configuration.
func NewIngest(cfg config.SMTPConfig, logger *zap.Logger) *Ingest {
	ingest := &Ingest{
		logger: logger,
		queued: make(map[string]*core.EmailRecord),
	}

	server := smtp.NewServer(&backend{ingest: ingest})
	server.Addr = cfg.ListenAddress
	server.Domain = cfg.Domain
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	if cfg.MaxMessageBytes > 0 {
		server.MaxMessageBytes = int64(cfg.MaxMessageBytes)
	}
	server.AllowInsecureAuth = true
	ingest.server = server

	return ingest
}

// Start binds the listener and serves in the background.
func (i *Ingest) Start() error {
	i.logger.Info("Starting SMTP ingestion listener",
		zap.String("address", i.server.Addr))
	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			i.logger.Error("SMTP server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the SMTP server down.
func (i *Ingest) Stop(ctx context.Context) error {
	return i.server.Shutdown(ctx)
}

// ListIDs returns up to max queued message IDs in arrival order.
func (i *Ingest) ListIDs(_ context.Context, max int) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	n := len(i.pending)
	if n > max {
		n = max
	}
	ids := make([]string, n)
	copy(ids, i.pending[:n])
	return ids, nil
}

// Fetch returns a queued message and removes it from the queue.
func (i *Ingest) Fetch(_ context.Context, id string) (*core.EmailRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	record, ok := i.queued[id]
	if !ok {
		return nil, fmt.Errorf("no queued message with ID %s", id)
	}
	delete(i.queued, id)
	for idx, pending := range i.pending {
		if pending == id {
			i.pending = append(i.pending[:idx], i.pending[idx+1:]...)
			break
		}
	}
	return record, nil
}

// enqueue parses the raw message and adds it to the queue.
func (i *Ingest) enqueue(from string, raw io.Reader) error {
	msg, err := mail.ReadMessage(raw)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return fmt.Errorf("failed to read message body: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.nextSeq++
	id := fmt.Sprintf("smtp-%d-%d", time.Now().UnixNano(), i.nextSeq)

	sender := msg.Header.Get("From")
	if sender == "" {
		sender = from
	}
	if addr, err := mail.ParseAddress(sender); err == nil {
		sender = addr.Address
	}

	record := &core.EmailRecord{
		ID:      id,
		Subject: msg.Header.Get("Subject"),
		From:    sender,
		Date:    msg.Header.Get("Date"),
		Body:    strings.TrimSpace(string(body)),
	}
	if record.Subject == "" {
		record.Subject = "No Subject"
	}

	i.queued[id] = record
	i.pending = append(i.pending, id)

	i.logger.Debug("Queued inbound message",
		zap.String("email_id", id),
		zap.String("from", record.From))
	return nil
}

type backend struct {
	ingest *Ingest
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{ingest: b.ingest}, nil
}

type session struct {
	ingest *Ingest
	from   string
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *session) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

func (s *session) Data(r io.Reader) error {
	return s.ingest.enqueue(s.from, r)
}

func (s *session) Reset() {
	s.from = ""
}

func (s *session) Logout() error {
	return nil
}

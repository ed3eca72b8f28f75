package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/utils"
)

// SMTPFilter is an inbound content filter: it accepts mail over SMTP, runs
// the trust pipeline and either rejects the message or re-injects it into
// the upstream MTA with verdict headers attached.
type SMTPFilter struct {
	service         *core.AnalysisService
	text            *utils.TextProcessor
	logger          *zap.Logger
	listenAddr      string
	server          *smtp.Server
	blockPhishing   bool
	verdictHeader   string
	trustHeader     string
	tierHeader      string
	reasonHeader    string
	attackHeader    string
	upstreamAddr    string
	upstreamPort    int
	upstreamEnabled bool
	subjectPrefix   string
	modifySubject   bool
	maxTextSize     int
}

// SMTPFilterConfig bundles the SMTP filter settings.
type SMTPFilterConfig struct {
	ListenAddr      string
	BlockPhishing   bool
	VerdictHeader   string
	TrustHeader     string
	TierHeader      string
	ReasonHeader    string
	AttackHeader    string
	UpstreamAddr    string
	UpstreamPort    int
	UpstreamEnabled bool
	SubjectPrefix   string
	ModifySubject   bool
	MaxTextSize     int
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(service *core.AnalysisService, text *utils.TextProcessor, logger *zap.Logger, cfg SMTPFilterConfig) *SMTPFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[SUSPECTED PHISHING] "
	}

	return &SMTPFilter{
		service:         service,
		text:            text,
		logger:          logger,
		listenAddr:      cfg.ListenAddr,
		blockPhishing:   cfg.BlockPhishing,
		verdictHeader:   cfg.VerdictHeader,
		trustHeader:     cfg.TrustHeader,
		tierHeader:      cfg.TierHeader,
		reasonHeader:    cfg.ReasonHeader,
		attackHeader:    cfg.AttackHeader,
		upstreamAddr:    cfg.UpstreamAddr,
		upstreamPort:    cfg.UpstreamPort,
		upstreamEnabled: cfg.UpstreamEnabled,
		subjectPrefix:   cfg.SubjectPrefix,
		modifySubject:   cfg.ModifySubject,
		maxTextSize:     cfg.MaxTextSize,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email directly, bypassing the SMTP transport.
// Used for testing and direct API calls.
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// sendUpstream re-injects the processed email into the upstream MTA.
func (f *SMTPFilter) sendUpstream(sender string, recipients []string, emailData []byte) error {
	upstreamAddr := fmt.Sprintf("%s:%d", f.upstreamAddr, f.upstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", upstreamAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to upstream MTA: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err = wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// The email has already been sent at this point
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data receives the message, analyzes it and acts on the decision.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	rawDataCopy := make([]byte, len(rawData))
	copy(rawDataCopy, rawData)

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}
	textContent = s.filter.text.ProcessText(textContent, s.filter.maxTextSize)

	email := &core.Email{
		Headers: make(map[string][]string),
		Body:    textContent,
		From:    s.sender,
		To:      s.recipients,
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
		if strings.EqualFold(key, "Subject") && len(values) > 0 {
			email.Subject = values[0]
		}
	}

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, analysisErr := s.filter.service.AnalyzeEmail(ctx, email)
	if analysisErr != nil {
		s.filter.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))

		// Fail open: deliver with an error header rather than bounce mail on
		// an internal failure, but never pretend the message was analyzed.
		result = &core.AnalysisResult{
			Prediction:      core.LabelSafe,
			TrustScore:      0,
			Tier:            core.TierEscalate,
			NaturalLanguage: fmt.Sprintf("Error during analysis: %v", analysisErr),
			ModelUsed:       "error",
			AnalyzedAt:      time.Now(),
			Degraded:        true,
		}
	}

	isPhishing := result.Prediction == core.LabelPhishing

	if isPhishing && s.filter.blockPhishing && analysisErr == nil && result.Tier != core.TierEscalate {
		// ESCALATE-tier verdicts are never auto-blocked: low trust in the
		// verdict means a human gets to see the message.
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Float64("trust_score", result.TrustScore),
			zap.String("attack_type", result.AttackType),
			zap.String("reason", result.NaturalLanguage))
		return fmt.Errorf("550 Rejected as phishing (trust: %.2f)", result.TrustScore)
	}

	var modifiedEmail bytes.Buffer

	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.verdictHeader, result.Prediction)
	fmt.Fprintf(&modifiedEmail, "%s: %.4f\r\n", s.filter.trustHeader, result.TrustScore)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.tierHeader, result.Tier)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.reasonHeader, sanitizeHeaderValue(result.NaturalLanguage))
	if result.AttackType != "" {
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.attackHeader, result.AttackType)
	}
	if analysisErr != nil {
		fmt.Fprintf(&modifiedEmail, "X-Phish-Analysis-Error: %s\r\n", sanitizeHeaderValue(analysisErr.Error()))
	}

	tagSubject := isPhishing && s.filter.modifySubject && s.filter.subjectPrefix != ""
	if tagSubject {
		originalSubject := msg.Header.Get("Subject")
		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}
		if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
			fmt.Fprintf(&modifiedEmail, "Subject: %s%s\r\n", s.filter.subjectPrefix, decodedSubject)
			for key, values := range msg.Header {
				if strings.EqualFold(key, "Subject") {
					continue
				}
				for _, value := range values {
					fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
				}
			}
		} else {
			tagSubject = false
		}
	}
	if !tagSubject {
		for key, values := range msg.Header {
			for _, value := range values {
				fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
			}
		}
	}

	fmt.Fprintf(&modifiedEmail, "\r\n")

	// Append the original body unmodified, preserving MIME parts and
	// attachments.
	bodyStartIndex := bytes.Index(rawDataCopy, []byte("\r\n\r\n"))
	if bodyStartIndex == -1 {
		bodyStartIndex = bytes.Index(rawDataCopy, []byte("\n\n"))
		if bodyStartIndex == -1 {
			bodyBytes, err := io.ReadAll(msg.Body)
			if err != nil {
				s.filter.logger.Error("Failed to read message body", zap.Error(err))
				return err
			}
			modifiedEmail.Write(bodyBytes)
		} else {
			modifiedEmail.Write(rawDataCopy[bodyStartIndex+2:])
		}
	} else {
		modifiedEmail.Write(rawDataCopy[bodyStartIndex+4:])
	}

	if s.filter.upstreamEnabled {
		if err := s.filter.sendUpstream(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.filter.logger.Error("Failed to send email to upstream MTA",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Upstream forwarding disabled, this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
		zap.String("verdict", string(result.Prediction)),
		zap.Float64("trust_score", result.TrustScore),
		zap.String("tier", string(result.Tier)),
		zap.String("attack_type", result.AttackType),
		zap.String("model", result.ModelUsed))

	return nil
}

// Logout handles SMTP logout (not needed for the filter)
func (s *smtpSession) Logout() error {
	return nil
}

// sanitizeHeaderValue keeps injected rationale text on a single header line.
func sanitizeHeaderValue(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return v
}

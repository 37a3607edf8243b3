package nodekit

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	gomail "github.com/wneessen/go-mail"
)

// EmailMessage is the payload of an email send operation
type EmailMessage struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
	IsHTML  bool
}

// SplitAddresses splits a comma separated recipient list
func SplitAddresses(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SendEmail delivers msg over SMTP using an smtp credential
// (host, port, user, password, secure). Connect and send share ConnectTimeout.
func SendEmail(ctx context.Context, creds Credentials, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return &MissingParameterError{Name: "toEmail"}
	}
	from := msg.From
	if from == "" {
		from = creds.String("", "user", "username")
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return fmt.Errorf("failed to set from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("failed to set to: %w", err)
	}
	if len(msg.CC) > 0 {
		if err := m.Cc(msg.CC...); err != nil {
			return fmt.Errorf("failed to set cc: %w", err)
		}
	}
	if len(msg.BCC) > 0 {
		if err := m.Bcc(msg.BCC...); err != nil {
			return fmt.Errorf("failed to set bcc: %w", err)
		}
	}
	m.Subject(msg.Subject)
	if msg.IsHTML {
		m.SetBodyString(gomail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}

	tlsPolicy := gomail.TLSOpportunistic
	if creds.Bool(false, "secure", "ssl", "tls") {
		tlsPolicy = gomail.TLSMandatory
	}
	opts := []gomail.Option{
		gomail.WithPort(creds.Int(587, "port")),
		gomail.WithTLSPolicy(tlsPolicy),
		gomail.WithTimeout(ConnectTimeout),
	}
	if password := creds.String("", "password"); password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(creds.String("", "user", "username")),
			gomail.WithPassword(password),
		)
	}
	client, err := gomail.NewClient(creds.String("localhost", "host"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// MailSummary is the envelope of a fetched message
type MailSummary struct {
	UID       uint32
	MessageID string
	Subject   string
	From      []string
	To        []string
	Date      time.Time
	Text      string
}

// DialIMAP connects and logs in with an imap credential. The dial is bounded by
// ConnectTimeout and every later command by QueryTimeout through the socket deadline.
func DialIMAP(creds Credentials) (*imapclient.Client, error) {
	host := creds.String("localhost", "host")
	secure := creds.Bool(true, "secure", "ssl", "tls")
	port := 993
	if !secure {
		port = 143
	}
	addr := net.JoinHostPort(host, strconv.Itoa(creds.Int(port, "port")))

	dialer := &net.Dialer{Timeout: ConnectTimeout}
	var conn net.Conn
	var err error
	if secure {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("IMAP connection failed: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(ConnectTimeout + QueryTimeout)); err != nil {
		conn.Close()
		return nil, err
	}

	client := imapclient.New(conn, nil)
	if err := client.Login(creds.String("", "user", "username"), creds.String("", "password")).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}
	return client, nil
}

// FetchUnseen lists unseen messages of mailbox, optionally flagging them as seen.
// With withText the body is downloaded without setting \Seen and its first
// text part is kept.
func FetchUnseen(client *imapclient.Client, mailbox string, markSeen, withText bool) ([]MailSummary, error) {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := client.Select(mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", mailbox, err)
	}
	data, err := client.UIDSearch(&imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	uids := data.AllUIDs()
	if len(uids) == 0 {
		return []MailSummary{}, nil
	}
	set := imap.UIDSetNum(uids...)
	opts := &imap.FetchOptions{UID: true, Envelope: true}
	section := &imap.FetchItemBodySection{Peek: true}
	if withText {
		opts.BodySection = []*imap.FetchItemBodySection{section}
	}
	msgs, err := client.Fetch(set, opts).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	out := make([]MailSummary, 0, len(msgs))
	for _, msg := range msgs {
		s := MailSummary{UID: uint32(msg.UID)}
		if env := msg.Envelope; env != nil {
			s.MessageID = env.MessageID
			s.Subject = env.Subject
			s.Date = env.Date
			s.From = addressList(env.From)
			s.To = addressList(env.To)
		}
		if withText {
			if s.Text, err = MessageText(msg.FindBodySection(section)); err != nil {
				return nil, fmt.Errorf("failed to read message %d: %w", s.UID, err)
			}
		}
		out = append(out, s)
	}

	if markSeen {
		store := &imap.StoreFlags{Op: imap.StoreFlagsAdd, Flags: []imap.Flag{imap.FlagSeen}, Silent: true}
		if err := client.Store(set, store, nil).Close(); err != nil {
			return nil, fmt.Errorf("failed to mark messages as seen: %w", err)
		}
	}
	return out, nil
}

// MessageText returns the first text/plain part of a raw RFC 5322 message,
// falling back to the first text/html part.
func MessageText(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer mr.Close()

	var html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch ct {
		case "", "text/plain":
			b, err := io.ReadAll(p.Body)
			return string(b), err
		case "text/html":
			if html == "" {
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", err
				}
				html = string(b)
			}
		}
	}
	return html, nil
}

func addressList(addrs []imap.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Addr())
	}
	return out
}

// Map renders the summary as item data
func (s MailSummary) Map() map[string]any {
	from := make([]any, len(s.From))
	for i, f := range s.From {
		from[i] = f
	}
	to := make([]any, len(s.To))
	for i, t := range s.To {
		to[i] = t
	}
	return map[string]any{
		"uid":       int(s.UID),
		"messageId": s.MessageID,
		"subject":   s.Subject,
		"from":      from,
		"to":        to,
		"date":      s.Date.UTC().Format(time.RFC3339),
		"text":      s.Text,
	}
}

// Package gmail sends digest emails through the Gmail API using the
// installed-app OAuth flow.
package gmail

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mikezhu1928477/Google/internal/digest"
	"github.com/mikezhu1928477/Google/internal/gapi"
	"github.com/mikezhu1928477/Google/internal/logger"
)

// The authenticated user; Gmail resolves "me" to the account that granted
// consent.
const gmailUser = "me"

type Client struct {
	srv     *gmailapi.Service
	limiter *gapi.RateLimiter
}

// NewClient creates an authenticated Gmail client. Returns ErrAuthRequired
// when no cached token exists; run the interactive flow first.
func NewClient(ctx context.Context, auth *AuthManager) (*Client, error) {
	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return &Client{
		srv:     srv,
		limiter: gapi.NewRateLimiter(gapi.ServiceGmail),
	}, nil
}

// SendInput describes one digest delivery.
type SendInput struct {
	To            string
	Subject       string // empty: derived from SubjectPrefix and count
	SubjectPrefix string
	TimeWindow    string
	SheetURL      string
	MaxInline     int
	Articles      []digest.Article
}

// SendDigest renders the digest bodies, assembles the MIME message, and
// sends it. Returns the Gmail message ID.
func (c *Client) SendDigest(ctx context.Context, in SendInput) (string, error) {
	if in.To == "" {
		return "", fmt.Errorf("no recipient configured")
	}

	subject := in.Subject
	if subject == "" {
		subject = digest.Subject(in.SubjectPrefix, len(in.Articles))
	}

	opts := digest.RenderOptions{
		TimeWindow: in.TimeWindow,
		SheetURL:   in.SheetURL,
		MaxInline:  in.MaxInline,
	}

	textBody, err := digest.RenderText(in.Articles, opts)
	if err != nil {
		return "", err
	}
	htmlBody, err := digest.RenderHTML(in.Articles, opts)
	if err != nil {
		return "", err
	}

	msg := &mimeMessage{
		From:     gmailUser,
		To:       in.To,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
	raw, err := msg.encode()
	if err != nil {
		return "", err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	sent, err := c.srv.Users.Messages.Send(gmailUser, &gmailapi.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		if gapi.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return "", fmt.Errorf("failed to send digest: %w", gapi.WrapError(err))
	}

	logger.Info("digest sent", "message_id", sent.Id, "to", in.To, "articles", len(in.Articles))
	return sent.Id, nil
}

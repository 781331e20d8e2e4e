package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"
)

// mimeMessage assembles a multipart/alternative RFC 2822 message with a
// plain-text part and an HTML part, the way mail clients expect digests.
type mimeMessage struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

const mimeBoundary = "digest-boundary-4f9a1c"

// encode returns the base64url-encoded raw message ready for the Gmail API.
func (m *mimeMessage) encode() (string, error) {
	if m.To == "" {
		return "", fmt.Errorf("message has no recipient")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}

	var b strings.Builder

	// Non-ASCII subjects need RFC 2047 encoding.
	subject := mime.QEncoding.Encode("UTF-8", m.Subject)

	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	writePart(&b, "text/plain", m.TextBody)
	writePart(&b, "text/html", m.HTMLBody)
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

func writePart(b *strings.Builder, contentType, body string) {
	fmt.Fprintf(b, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")
	b.WriteString(wrapBase64(base64.StdEncoding.EncodeToString([]byte(body))))
	b.WriteString("\r\n")
}

// wrapBase64 folds base64 content at 76 characters per RFC 2045.
func wrapBase64(s string) string {
	const lineLen = 76
	var b strings.Builder
	for len(s) > lineLen {
		b.WriteString(s[:lineLen])
		b.WriteString("\r\n")
		s = s[lineLen:]
	}
	b.WriteString(s)
	return b.String()
}

package gmail

import (
	"encoding/base64"
	"mime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	data, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err, "raw message must be base64url")
	return string(data)
}

func TestEncodeProducesMultipartAlternative(t *testing.T) {
	msg := &mimeMessage{
		From:     "me",
		To:       "someone@example.com",
		Subject:  "Test Digest",
		TextBody: "plain body",
		HTMLBody: "<p>html body</p>",
	}

	raw, err := msg.encode()
	require.NoError(t, err)

	decoded := decodeRaw(t, raw)

	assert.Contains(t, decoded, "From: me\r\n")
	assert.Contains(t, decoded, "To: someone@example.com\r\n")
	assert.Contains(t, decoded, "Subject: Test Digest\r\n")
	assert.Contains(t, decoded, "MIME-Version: 1.0\r\n")
	assert.Contains(t, decoded, `multipart/alternative; boundary="digest-boundary-4f9a1c"`)
	assert.Contains(t, decoded, `Content-Type: text/plain; charset="UTF-8"`)
	assert.Contains(t, decoded, `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, decoded, "--digest-boundary-4f9a1c--\r\n")

	// Bodies ride as base64 parts.
	assert.Contains(t, decoded, base64.StdEncoding.EncodeToString([]byte("plain body")))
	assert.Contains(t, decoded, base64.StdEncoding.EncodeToString([]byte("<p>html body</p>")))
}

func TestEncodeChineseSubject(t *testing.T) {
	msg := &mimeMessage{
		From:     "me",
		To:       "someone@example.com",
		Subject:  "📰 新闻日报 - 5 条新闻",
		TextBody: "body",
		HTMLBody: "<p>body</p>",
	}

	raw, err := msg.encode()
	require.NoError(t, err)

	decoded := decodeRaw(t, raw)
	require.NotContains(t, decoded, "Subject: 📰", "non-ASCII subject must be RFC 2047 encoded")

	var subjectLine string
	for _, line := range strings.Split(decoded, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subjectLine = strings.TrimPrefix(line, "Subject: ")
			break
		}
	}
	require.NotEmpty(t, subjectLine)

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(subjectLine)
	require.NoError(t, err)
	assert.Equal(t, "📰 新闻日报 - 5 条新闻", subject)
}

func TestEncodeRejectsBadRecipient(t *testing.T) {
	msg := &mimeMessage{From: "me", Subject: "s", TextBody: "t", HTMLBody: "h"}

	_, err := msg.encode()
	assert.Error(t, err, "empty recipient")

	msg.To = "not an address"
	_, err = msg.encode()
	assert.Error(t, err, "unparseable recipient")
}

func TestWrapBase64FoldsLongLines(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 300)))
	wrapped := wrapBase64(encoded)

	for _, line := range strings.Split(wrapped, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	assert.Equal(t, encoded, strings.ReplaceAll(wrapped, "\r\n", ""))
}

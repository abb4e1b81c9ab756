package announce

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
)

// Message is a rendered announcement with a plain text and an HTML part
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Bytes renders the message as a multipart/alternative MIME document. The HTML part
// comes last, the preferred alternative per RFC 2046.
func (m *Message) Bytes() []byte {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	writePart(writer, "text/plain", m.Text)
	writePart(writer, "text/html", m.HTML)
	_ = writer.Close()

	var out bytes.Buffer
	if m.From != "" {
		fmt.Fprintf(&out, "From: %s\r\n", m.From)
	}
	if m.To != "" {
		fmt.Fprintf(&out, "To: %s\r\n", m.To)
	}
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n", writer.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes()
}

func writePart(writer *multipart.Writer, contentType, content string) {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType+"; charset=\"utf-8\"")
	header.Set("Content-Transfer-Encoding", "quoted-printable")

	part, err := writer.CreatePart(header)
	if err != nil {
		return
	}
	qp := quotedprintable.NewWriter(part)
	_, _ = qp.Write([]byte(content))
	_ = qp.Close()
}

package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
)

// parseEML parses an RFC 5322 message, walking multipart bodies for the
// first text/plain part and collecting attachment metadata.
func parseEML(data []byte) (*Message, error) {
	parsed, err := netmail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse eml: %w", err)
	}

	msg := &Message{
		Subject:   decodeHeader(parsed.Header.Get("Subject")),
		MessageID: strings.Trim(parsed.Header.Get("Message-ID"), "<>"),
	}
	if date, err := parsed.Header.Date(); err == nil {
		msg.Date = date.UTC()
	}
	if from, err := parsed.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = Address{Name: from[0].Name, Email: from[0].Address}
	}
	msg.To = addressList(parsed.Header, "To")
	msg.Cc = addressList(parsed.Header, "Cc")
	msg.Bcc = addressList(parsed.Header, "Bcc")

	contentType := parsed.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if err := walkParts(parsed.Body, params["boundary"], msg); err != nil {
			return nil, err
		}
	} else {
		body, err := decodeBody(parsed.Body, parsed.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return nil, err
		}
		msg.Body = body
	}
	return msg, nil
}

func addressList(h netmail.Header, key string) []Address {
	list, err := h.AddressList(key)
	if err != nil {
		return nil
	}
	out := make([]Address, 0, len(list))
	for _, a := range list {
		out = append(out, Address{Name: a.Name, Email: a.Address})
	}
	return out
}

// walkParts scans a multipart body. The first text/plain part becomes
// the message body; parts with a filename become attachments.
func walkParts(r io.Reader, boundary string, msg *Message) error {
	if boundary == "" {
		return fmt.Errorf("multipart message without boundary")
	}
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read body part: %w", err)
		}

		partType, params, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if strings.HasPrefix(partType, "multipart/") {
			if err := walkParts(part, params["boundary"], msg); err != nil {
				return err
			}
			continue
		}

		if filename := part.FileName(); filename != "" {
			content, _ := io.ReadAll(part)
			msg.Attachments = append(msg.Attachments, Attachment{
				Filename:    decodeHeader(filename),
				ContentType: partType,
				Size:        decodedSize(content, part.Header.Get("Content-Transfer-Encoding")),
			})
			continue
		}

		if partType == "text/plain" && msg.Body == "" {
			body, err := decodeBody(part, part.Header.Get("Content-Transfer-Encoding"))
			if err != nil {
				return err
			}
			msg.Body = body
		}
	}
}

func decodeBody(r io.Reader, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(body), nil
}

func decodedSize(content []byte, encoding string) int64 {
	if strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		trimmed := strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' {
				return -1
			}
			return r
		}, string(content))
		if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
			return int64(len(decoded))
		}
	}
	return int64(len(content))
}

// decodeHeader decodes RFC 2047 encoded words.
func decodeHeader(s string) string {
	decoder := mime.WordDecoder{}
	decoded, err := decoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

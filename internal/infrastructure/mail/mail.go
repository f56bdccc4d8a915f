// Package mail imports stakeholder email into communication records. It
// parses RFC 5322 .eml text and Outlook .msg compound files.
package mail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/comms"
)

// Address is a parsed mailbox.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment describes an attached file without its content.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Message is one parsed email.
type Message struct {
	From        Address      `json:"from"`
	To          []Address    `json:"to"`
	Cc          []Address    `json:"cc"`
	Bcc         []Address    `json:"bcc"`
	Subject     string       `json:"subject"`
	Date        time.Time    `json:"date"`
	MessageID   string       `json:"messageId"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
}

// ParseFile parses an email file by extension: .eml or .msg.
func ParseFile(path string) (*Message, error) {
	// #nosec G304 -- import path is operator-supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		return parseEML(data)
	case ".msg":
		return parseMsg(data)
	default:
		return nil, fmt.Errorf("unsupported email format: %s", filepath.Ext(path))
	}
}

// Record converts the message into a communication record with detected
// tags and references. Stakeholders are the recipient addresses.
func (m *Message) Record() comms.Record {
	var stakeholders []string
	for _, a := range append(append([]Address{}, m.To...), m.Cc...) {
		if a.Email != "" {
			stakeholders = append(stakeholders, a.Email)
		} else if a.Name != "" {
			stakeholders = append(stakeholders, a.Name)
		}
	}
	return comms.NewRecord(comms.OriginImported, m.Subject, m.Body, m.Date, stakeholders)
}

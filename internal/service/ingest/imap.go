package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/durvalm/aram-reports/internal/config"
)

// imapClient is the production MailClient over IMAP with TLS.
type imapClient struct {
	c *client.Client
}

// DialIMAP connects to the configured host and authenticates with the
// address and app password.
func DialIMAP(cfg config.MailConfig) (MailClient, error) {
	c, err := client.DialTLS(cfg.Host, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Host, err)
	}
	if err := c.Login(cfg.Address, cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("login %s: %w", cfg.Address, err)
	}
	return &imapClient{c: c}, nil
}

func (m *imapClient) SelectFolder(name string) error {
	_, err := m.c.Select(name, true)
	return err
}

func (m *imapClient) ListFolders() ([]string, error) {
	boxes := make(chan *imap.MailboxInfo, 16)
	done := make(chan error, 1)
	go func() {
		done <- m.c.List("", "*", boxes)
	}()

	var names []string
	for box := range boxes {
		names = append(names, box.Name)
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return names, nil
}

// FetchSince retrieves full messages newer than the given time and walks
// their MIME trees for attachments. Parts that fail to parse are dropped; the
// worker only needs well-formed attachments.
func (m *imapClient) FetchSince(since time.Time) ([]Message, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	ids, err := m.c.Search(criteria)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- m.c.Fetch(seqset, items, messages)
	}()

	var out []Message
	for msg := range messages {
		entry := Message{}
		if msg.Envelope != nil {
			entry.Subject = msg.Envelope.Subject
			entry.Date = msg.Envelope.Date
		}

		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		reader, err := mail.CreateReader(body)
		if err != nil {
			continue
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}
			header, ok := part.Header.(*mail.AttachmentHeader)
			if !ok {
				continue
			}
			filename, err := header.Filename()
			if err != nil || filename == "" {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			entry.Attachments = append(entry.Attachments, Attachment{Filename: filename, Data: data})
		}
		out = append(out, entry)
	}

	if err := <-done; err != nil {
		return nil, err
	}
	return out, nil
}

func (m *imapClient) Logout() error {
	return m.c.Logout()
}

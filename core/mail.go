package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	appfs "github.com/thaimooc/platform/fs"
)

var (
	templates tmplCache
	tmplInit  sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads and parses all embedded email templates once.
func ParseEmailTemplates(logger Logger) {
	tmplInit.Do(func() {
		templates = make(tmplCache)

		entries, err := appfs.FS.ReadDir("templates/email")
		if err != nil {
			logger.Fatal(fmt.Sprintf("reading email templates: %v", err), err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			fname := entry.Name()
			ext := path.Ext(fname)
			name := strings.TrimSuffix(fname, ext)

			raw, err := appfs.FS.ReadFile(path.Join("templates/email", fname))
			if err != nil {
				logger.Fatal(fmt.Sprintf("reading email template %s: %v", fname, err), err)
			}

			entry := templates[name]
			if entry == nil {
				entry = make(tmplCacheEntry)
				templates[name] = entry
			}
			switch ext {
			case ".txt":
				tmpl, err := texttmpl.New(fname).Parse(string(raw))
				if err != nil {
					logger.Fatal(fmt.Sprintf("parsing email template %s: %v", fname, err), err)
				}
				entry[ext] = tmpl
			case ".html":
				tmpl, err := htmltmpl.New(fname).Parse(string(raw))
				if err != nil {
					logger.Fatal(fmt.Sprintf("parsing email template %s: %v", fname, err), err)
				}
				entry[ext] = tmpl
			}
		}
	})
}

func (m *EmailMessage) contextData(conf *Config) ContextData {
	return ContextData{
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) template(ext string) (interface{}, bool) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmplEntry, ok := cache[ext]
	return tmplEntry, ok
}

func (m *EmailMessage) renderText(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := m.template(".txt")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*texttmpl.Template)
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m.contextData(conf)); err != nil {
		return err
	}
	m.TextContent = buf.String()
	return nil
}

func (m *EmailMessage) renderHTML(conf *Config) error {
	if m.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := m.template(".html")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*htmltmpl.Template)
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m.contextData(conf)); err != nil {
		return err
	}
	m.HTMLContent = buf.String()
	return nil
}

// Render renders the message's text and HTML contents from its template (if any).
func (m *EmailMessage) Render(conf *Config) error {
	if err := m.renderText(conf); err != nil {
		return err
	}
	return m.renderHTML(conf)
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}

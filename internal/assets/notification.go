package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/notification.txt.go.tmpl
var fallbackNotificationTemplate string

const (
	notificationTemplateName = "notification.txt.go.tmpl"
	// NotificationTitle is the title of every tidbit notification.
	NotificationTitle = "📚 Tidbit"
)

// NotificationTemplate is the data available to notification body templates.
type NotificationTemplate struct {
	TidbitID     string
	Text         string
	CategoryID   string
	CategoryName string
}

// NotificationRenderer renders notification bodies.
type NotificationRenderer struct {
	tmpl *template.Template
}

// NewNotificationRenderer parses the template at templatePath, or the embedded
// template when the path is empty or unreadable.
func NewNotificationRenderer(templatePath string) (*NotificationRenderer, error) {
	tmpl, err := parseTemplateWithFallback(templatePath, notificationTemplateName, fallbackNotificationTemplate)
	if err != nil {
		return nil, fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	return &NotificationRenderer{tmpl: tmpl}, nil
}

// RenderNotification returns the notification body for data.
func (r *NotificationRenderer) RenderNotification(data NotificationTemplate) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

package email

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ContactNotification is everything needed to notify the business about
// a contact form submission.
type ContactNotification struct {
	BusinessName string
	To           string

	Name    string
	Email   string
	Phone   string
	Message string
}

// ContactField is one labeled line of the notification body.
// Href, when set, turns the value into a link in the HTML body.
type ContactField struct {
	Label string
	Value string
	Href  htmltemplate.URL
}

// ContactView is the data shared by the HTML and text contact templates.
type ContactView struct {
	Heading      string
	Fields       []ContactField
	MessageLines []string
	Footer       string
}

// NewContactView builds the template data for a notification.
func NewContactView(n ContactNotification) ContactView {
	fields := []ContactField{
		{Label: "From", Value: n.Name},
		{Label: "Email", Value: n.Email, Href: link("mailto:", n.Email)},
	}

	if n.Phone != "" {
		fields = append(fields, ContactField{Label: "Phone", Value: n.Phone, Href: link("tel:", n.Phone)})
	}

	return ContactView{
		Heading:      "New Contact Form Submission",
		Fields:       fields,
		MessageLines: strings.Split(strings.ReplaceAll(n.Message, "\r\n", "\n"), "\n"),
		Footer:       "This message was sent from your website contact form.",
	}
}

// link marks scheme+value as a URL so html/template keeps the fixed scheme.
// The value part is still normalized and attribute-escaped on output.
func link(scheme, value string) htmltemplate.URL {
	return htmltemplate.URL(scheme + value)
}

// ContactSubject is the subject line for a submission from name.
func ContactSubject(name string) string {
	return "New Contact Form Submission from " + name
}

// ContactSender is the From header for businessName.
func ContactSender(businessName string) string {
	return fmt.Sprintf("%s Website <%s>", businessName, SenderAddress)
}

// BuildContactEmail renders both bodies and assembles the Resend request.
// Replies go straight to the submitter.
func BuildContactEmail(n ContactNotification) (*resend.SendEmailRequest, error) {
	view := NewContactView(n)

	html, err := Render(ModeHTML, TemplateContact, view)
	if err != nil {
		return nil, err
	}

	text, err := Render(ModeText, TemplateContact, view)
	if err != nil {
		return nil, err
	}

	return &resend.SendEmailRequest{
		From:    ContactSender(n.BusinessName),
		To:      []string{n.To},
		ReplyTo: n.Email,
		Subject: ContactSubject(n.Name),
		Html:    html,
		Text:    text,
	}, nil
}

// SendContactNotification renders and sends a contact notification.
func (c *Client) SendContactNotification(ctx context.Context, n ContactNotification) (string, error) {
	params, err := BuildContactEmail(n)
	if err != nil {
		return "", err
	}

	return c.SendEmail(ctx, params)
}

// Package content renders outbound emails.
package content

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

//go:embed templates/*.tmpl
var templates embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templates, "templates/*.txt.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templates, "templates/*.html.tmpl"))
)

const (
	subjectFree    = "Phrase of the Day"
	subjectPremium = "Daily Phrase Premium: your exclusive inspiration"
)

// Renderer builds messages. BaseURL is the public address of the confirm endpoints.
type Renderer struct {
	BaseURL string
}

func NewRenderer(baseURL string) *Renderer {
	return &Renderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

type phraseData struct {
	Name    string
	Premium bool
	Phrase  model.Phrase
	Date    string
}

// Phrase renders the daily email; premium users get their own subject and greeting.
func (r *Renderer) Phrase(user model.User, phrase model.Phrase, date time.Time) (model.Message, error) {
	data := phraseData{
		Name:    displayName(user),
		Premium: user.Tier == model.TierPremium,
		Phrase:  phrase,
		Date:    date.Format("2006-01-02"),
	}

	subject := subjectFree
	if data.Premium {
		subject = subjectPremium
	}

	return render(user.Email, subject, "phrase.txt.tmpl", "phrase.html.tmpl", data)
}

type linkData struct {
	Name   string
	Intro  string
	Action string
	Link   string
	TTL    string
}

func (r *Renderer) Confirmation(user model.User, secret string, ttl time.Duration) (model.Message, error) {
	return render(user.Email, "Confirm your Daily Phrase subscription", "link.txt.tmpl", "link.html.tmpl", linkData{
		Name:   displayName(user),
		Intro:  "Confirm your email address to start receiving the phrase of the day.",
		Action: "Confirm my email",
		Link:   r.link("/confirm", secret),
		TTL:    humanDuration(ttl),
	})
}

func (r *Renderer) PasswordReset(user model.User, secret string, ttl time.Duration) (model.Message, error) {
	return render(user.Email, "Reset your Daily Phrase password", "link.txt.tmpl", "link.html.tmpl", linkData{
		Name:   displayName(user),
		Intro:  "We received a request to reset your password.",
		Action: "Reset my password",
		Link:   r.link("/password-reset/confirm", secret),
		TTL:    humanDuration(ttl),
	})
}

// AdminConfirmed is the plain-text notice sent to the operator address.
func (r *Renderer) AdminConfirmed(admin string, user model.User) model.Message {
	text := fmt.Sprintf("A new subscriber confirmed their account.\n\nID: %d\nName: %s\nEmail: %s\nPlan: %s\n",
		user.ID, displayName(user), user.Email, user.Tier)
	return model.Message{
		To:      admin,
		Subject: "New subscriber confirmed: " + user.Email,
		Text:    text,
	}
}

func (r *Renderer) link(path, secret string) string {
	return r.BaseURL + path + "?token=" + url.QueryEscape(secret)
}

func render(to, subject, textName, htmlName string, data any) (model.Message, error) {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, textName, data); err != nil {
		return model.Message{}, fmt.Errorf("failed to render %s: %w", textName, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, htmlName, data); err != nil {
		return model.Message{}, fmt.Errorf("failed to render %s: %w", htmlName, err)
	}
	return model.Message{To: to, Subject: subject, Text: text.String(), HTML: html.String()}, nil
}

func displayName(user model.User) string {
	if user.Name != "" {
		return user.Name
	}
	if user.Tier == model.TierPremium {
		return "Premium subscriber"
	}
	return "subscriber"
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}

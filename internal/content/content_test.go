package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/dailyphrase/internal/model"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestRenderer_Phrase(t *testing.T) {
	r := NewRenderer("https://phrase.example.com/")
	phrase := model.Phrase{ID: 1, Text: "Break the ice", Meaning: "Start a conversation", Example: "A joke <broke> the ice."}

	free, err := r.Phrase(model.User{Email: "ana@example.com", Name: "Ana", Tier: model.TierFree}, phrase, day)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", free.To)
	assert.Equal(t, subjectFree, free.Subject)
	assert.Contains(t, free.Text, "Hello Ana")
	assert.Contains(t, free.Text, `"Break the ice"`)
	assert.Contains(t, free.Text, "Meaning: Start a conversation")
	assert.Contains(t, free.Text, "2024-03-01")
	assert.Contains(t, free.HTML, "A joke &lt;broke&gt; the ice.")

	premium, err := r.Phrase(model.User{Email: "bo@example.com", Tier: model.TierPremium}, phrase, day)
	require.NoError(t, err)
	assert.Equal(t, subjectPremium, premium.Subject)
	assert.Contains(t, premium.Text, "Hello Premium subscriber")
	assert.Contains(t, premium.Text, "premium community")
}

func TestRenderer_PhraseWithoutOptionalFields(t *testing.T) {
	r := NewRenderer("https://phrase.example.com")
	msg, err := r.Phrase(model.User{Email: "ana@example.com"}, model.Phrase{Text: "Carpe diem"}, day)
	require.NoError(t, err)
	assert.NotContains(t, msg.Text, "Meaning:")
	assert.NotContains(t, msg.Text, "Example:")
}

func TestRenderer_Confirmation(t *testing.T) {
	r := NewRenderer("https://phrase.example.com/")
	msg, err := r.Confirmation(model.User{Email: "ana@example.com", Name: "Ana"}, "abc+/=", 24*time.Hour)
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "https://phrase.example.com/confirm?token=abc%2B%2F%3D")
	assert.Contains(t, msg.Text, "24 hours")
	assert.Contains(t, msg.HTML, `href="https://phrase.example.com/confirm?token=abc%2B%2F%3D"`)
}

func TestRenderer_PasswordReset(t *testing.T) {
	r := NewRenderer("https://phrase.example.com")
	msg, err := r.PasswordReset(model.User{Email: "ana@example.com"}, "secret", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "/password-reset/confirm?token=secret")
	assert.Contains(t, msg.Text, "1 hour.")
}

func TestRenderer_AdminConfirmed(t *testing.T) {
	r := NewRenderer("https://phrase.example.com")
	msg := r.AdminConfirmed("ops@example.com", model.User{ID: 42, Email: "ana@example.com", Tier: model.TierPremium})
	assert.Equal(t, "ops@example.com", msg.To)
	assert.Contains(t, msg.Subject, "ana@example.com")
	assert.Contains(t, msg.Text, "ID: 42")
	assert.Contains(t, msg.Text, "Plan: premium")
}

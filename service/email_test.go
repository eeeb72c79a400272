package service

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"budget/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func newTestEmailService(enabled bool) (*EmailService, *[]*gomail.Message) {
	s := NewEmailService(&config.EmailConfig{Enabled: enabled, Username: "noreply@example.com", From: "预算记账"})
	s.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.Local) }
	var sent []*gomail.Message
	s.send = func(m *gomail.Message) error {
		sent = append(sent, m)
		return nil
	}
	return s, &sent
}

func TestPasswordChangedBody(t *testing.T) {
	s, _ := newTestEmailService(true)
	body := s.passwordChangedBody("<alice>")
	assert.Contains(t, body, "&lt;alice&gt;")
	assert.Contains(t, body, "2024-05-01 08:30:00")
	assert.Contains(t, body, "密码已修改")
}

func TestNotifyPasswordChanged(t *testing.T) {
	s, sent := newTestEmailService(true)
	require.NoError(t, s.NotifyPasswordChanged("alice@example.com", "alice"))
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.Equal(t, []string{"alice@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"【预算记账】密码已修改"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "alice")
}

func TestNotifyPasswordChanged_Disabled(t *testing.T) {
	s, sent := newTestEmailService(false)
	assert.Error(t, s.NotifyPasswordChanged("alice@example.com", "alice"))
	assert.Empty(t, *sent)
}

func TestNotifyPasswordChanged_SendFailure(t *testing.T) {
	s, _ := newTestEmailService(true)
	s.send = func(*gomail.Message) error { return errors.New("smtp down") }

	err := s.NotifyPasswordChanged("alice@example.com", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

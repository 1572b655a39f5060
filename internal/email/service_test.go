package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-scheduler/config"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPServiceBuildsMessage(t *testing.T) {
	d := &recordingDialer{}
	svc := NewSMTPService(d, "noreply@clinic.test")

	require.NoError(t, svc.Send(context.Background(), "doc@clinic.test", "Shift scheduled", "Monday 08:00-12:00"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"noreply@clinic.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{"doc@clinic.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Shift scheduled"}, m.GetHeader("Subject"))
}

func TestSMTPServicePropagatesDialError(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	err := NewSMTPService(d, "noreply@clinic.test").Send(context.Background(), "a@b.c", "s", "b")
	assert.EqualError(t, err, "connection refused")
}

func TestSMTPServiceHonoursCancelledContext(t *testing.T) {
	d := &recordingDialer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPService(d, "noreply@clinic.test").Send(ctx, "a@b.c", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.sent)
}

func TestDisabledService(t *testing.T) {
	svc := NewService(config.SMTPConfig{Enabled: false})
	assert.ErrorIs(t, svc.Send(context.Background(), "a@b.c", "s", "b"), ErrDisabled)
}

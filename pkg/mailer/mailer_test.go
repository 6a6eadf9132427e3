package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlain(t *testing.T) {
	raw, err := Build("from@x", Message{To: "to@x", Subject: "Reserva confirmada", Body: "hello"}, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, "To: to@x\r\n")
	assert.Contains(t, s, "Content-Type: text/plain; charset=utf-8")
	assert.True(t, strings.HasSuffix(s, "\r\n\r\nhello\r\n"))
}

func TestBuildWithAttachment(t *testing.T) {
	raw, err := Build("from@x", Message{
		To:          "to@x",
		Subject:     "Receipt",
		Body:        "see attached",
		Attachments: []Attachment{{Filename: "appointment.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}},
	}, time.Now())
	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, "multipart/mixed; boundary=")
	assert.Contains(t, s, `filename="appointment.pdf"`)
	assert.Contains(t, s, "JVBERi0xLjM=")
}

func TestSMTPSenderSend(t *testing.T) {
	s := NewSMTPSender("localhost", 1025, "")
	var gotAddr string
	var gotTo []string
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo = addr, to
		return nil
	}

	require.NoError(t, s.Send(context.Background(), Message{To: "u@x", Subject: "s", Body: "b"}))
	assert.Equal(t, "localhost:1025", gotAddr)
	assert.Equal(t, []string{"u@x"}, gotTo)
}

func TestSMTPSenderErrors(t *testing.T) {
	s := NewSMTPSender("localhost", 1025, "from@x")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	assert.Error(t, s.Send(context.Background(), Message{Subject: "missing recipient"}))
	assert.ErrorContains(t, s.Send(context.Background(), Message{To: "u@x"}), "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: "u@x"}), context.Canceled)
}

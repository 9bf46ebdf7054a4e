package gmailclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("zespol@example.com", "anna@example.com", "Próba odwołana", "Treść")

	assert.True(t, strings.HasPrefix(msg, "From: zespol@example.com\r\nTo: anna@example.com\r\n"))
	assert.Contains(t, msg, "Subject: =?utf-8?q?Pr=C3=B3ba_odwo=C5=82ana?=\r\n")
	assert.Contains(t, msg, "charset=\"UTF-8\"")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nTreść"))
}

func TestBuildMessage_NoSenderAsciiSubject(t *testing.T) {
	msg := buildMessage("", "jan@example.com", "Hello", "Body")

	assert.False(t, strings.Contains(msg, "From:"))
	assert.Contains(t, msg, "Subject: Hello\r\n")
}

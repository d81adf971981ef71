package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenDeterminism(t *testing.T) {
	content := []byte("\x1b[1;32m$\x1b[0m ls -la\r\ntotal 0\r\n")

	tok1 := Token(content)
	tok2 := Token(content)

	assert.Equal(t, tok1, tok2, "Token must be deterministic")
	assert.Len(t, tok1, TokenLength, "MD5 hex is 32 characters")
	assert.True(t, IsToken(tok1))
}

func TestTokenKnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"hello without newline", "hello", "5d41402abc4b2a76b9719d911017c592"},
		{"hello with newline", "hello\n", "b1946ac92492d2347c6235b4d2611184"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Token([]byte(tt.content)))
		})
	}
}

func TestTokenChangesWithContent(t *testing.T) {
	a := Token([]byte("hello\n"))
	b := Token([]byte("hello"))
	c := Token([]byte("hello\r\n"))

	assert.NotEqual(t, a, b, "trailing newline is part of the content")
	assert.NotEqual(t, a, c, "line endings are part of the content")
}

func TestTokenDoesNotAliasInput(t *testing.T) {
	content := []byte("frame one\n")
	before := Token(content)
	content[0] = 'F'
	assert.NotEqual(t, before, Token(content))
	assert.Equal(t, before, Token([]byte("frame one\n")))
}

func TestIsToken(t *testing.T) {
	assert.True(t, IsToken("b1946ac92492d2347c6235b4d2611184"))
	assert.False(t, IsToken(""))
	assert.False(t, IsToken("B1946AC92492D2347C6235B4D2611184"), "uppercase is not canonical")
	assert.False(t, IsToken(strings.Repeat("g", TokenLength)))
	assert.False(t, IsToken("b1946ac92492d2347c6235b4d261118"))
}

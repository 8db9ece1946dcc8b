// Package whatsapp builds click-to-chat deep links.
package whatsapp

import "strings"

const (
	// BaseURL is the click-to-chat endpoint.
	BaseURL = "https://wa.me/"

	// DefaultPhone is the sales line in international format without "+".
	DefaultPhone = "94778673863"

	// DefaultMessage prefills the chat.
	DefaultMessage = "Hello! I'm interested in your co-working spaces."
)

// Link returns the deep link that opens a chat with phone, prefilled with
// message. Everything except digits is dropped from phone, so "+94 77 867
// 3863" and "94778673863" yield the same link. An empty message produces a
// link without a text parameter.
func Link(phone, message string) string {
	var b strings.Builder
	b.WriteString(BaseURL)
	b.WriteString(normalizePhone(phone))
	if message != "" {
		b.WriteString("?text=")
		b.WriteString(escapeComponent(message))
	}
	return b.String()
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if '0' <= r && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// escapeComponent percent-encodes s the way browsers encode a URI
// component: spaces become %20 and only A-Z a-z 0-9 - _ . ! ~ * ' ( ) are
// left as is. url.QueryEscape differs on spaces and on ! ' ( ) *.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

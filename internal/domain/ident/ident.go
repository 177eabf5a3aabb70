// Package ident generates short human-facing identifiers.
package ident

import (
	"crypto/rand"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Code returns n random uppercase alphanumeric characters.
func Code(n int) string {
	buf := make([]byte, n)
	// crypto/rand.Read never returns an error since Go 1.24.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}

// New returns prefix followed by seven random characters, e.g. "PK3F9Q2A".
func New(prefix string) string {
	return prefix + Code(7)
}

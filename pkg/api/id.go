package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	callIDPrefix    = "call_"
	messageIDPrefix = "msg_"
)

var (
	callIDPattern    = regexp.MustCompile(`^call_[a-zA-Z0-9]{24}$`)
	messageIDPattern = regexp.MustCompile(`^msg_[a-zA-Z0-9]{24}$`)
)

// NewCallID generates a call ID with the "call_" prefix followed by 24
// cryptographically random alphanumeric characters. Used when a replayed
// tool call carries no id of its own.
func NewCallID() string {
	return callIDPrefix + randomAlphanumeric(idLength)
}

// NewMessageID generates a message item ID with the "msg_" prefix.
func NewMessageID() string {
	return messageIDPrefix + randomAlphanumeric(idLength)
}

// ValidateCallID checks whether the given string is a well-formed call ID.
func ValidateCallID(id string) bool {
	return callIDPattern.MatchString(id)
}

// ValidateMessageID checks whether the given string is a well-formed message ID.
func ValidateMessageID(id string) bool {
	return messageIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}

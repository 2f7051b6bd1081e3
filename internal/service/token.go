package service

import (
	"crypto/rand"
	"encoding/hex"
)

const sessionTokenBytes = 24

// NewSessionToken 24 字节随机数的十六进制串，共 48 个字符
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidSessionToken 只做格式校验，不代表会话存在
func ValidSessionToken(token string) bool {
	if len(token) != sessionTokenBytes*2 {
		return false
	}
	for _, r := range token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

package rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Signer produces the venue's HMAC-SHA256 request signature headers.
// Message layout: timestamp + method + path + body, keyed by the
// base64-decoded API secret; signature is URL-safe base64.
type Signer struct {
	apiKey string
	secret string
}

// NewSigner creates a request signer from API credentials.
func NewSigner(apiKey, secret string) *Signer {
	return &Signer{apiKey: apiKey, secret: secret}
}

// SignRequest returns the auth headers for one request.
func (s *Signer) SignRequest(method, requestPath string, body []byte) (map[string]string, error) {
	timestamp := time.Now().Unix()
	sig, err := buildHmacSignature(s.secret, timestamp, method, requestPath, body)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"X-MM-API-KEY":   s.apiKey,
		"X-MM-TIMESTAMP": strconv.FormatInt(timestamp, 10),
		"X-MM-SIGNATURE": sig,
	}, nil
}

func buildHmacSignature(secret string, timestamp int64, method, requestPath string, body []byte) (string, error) {
	message := strconv.FormatInt(timestamp, 10) + method + requestPath
	if len(body) > 0 {
		message += string(body)
	}

	// Secrets may arrive in base64url form; normalize before decoding.
	sanitized := strings.ReplaceAll(secret, "-", "+")
	sanitized = strings.ReplaceAll(sanitized, "_", "/")

	keyData, err := base64.StdEncoding.DecodeString(sanitized)
	if err != nil {
		return "", errors.Wrap(err, "decode api secret")
	}

	mac := hmac.New(sha256.New, keyData)
	mac.Write([]byte(message))
	signature := mac.Sum(nil)

	sigBase64 := base64.StdEncoding.EncodeToString(signature)
	sigURLSafe := strings.ReplaceAll(sigBase64, "+", "-")
	sigURLSafe = strings.ReplaceAll(sigURLSafe, "/", "_")
	return sigURLSafe, nil
}

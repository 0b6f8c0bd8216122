package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader = "X-API-Signature"
	TimestampHeader = "X-API-Timestamp"

	signaturePrefix = "ed25519="

	// MaxClockSkew is how far a request timestamp may drift from the local clock.
	MaxClockSkew = 5 * time.Minute
)

var (
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
	ErrTimestampOutOfWindow   = errors.New("timestamp outside allowed window")
	ErrSignatureMismatch      = errors.New("signature verification failed")
)

// canonicalRequest is the exact byte string that gets signed.
func canonicalRequest(method, path, timestamp string, body []byte) []byte {
	bodyHash := sha256.Sum256(body)

	return []byte(fmt.Sprintf("%s\n%s\n\n%s\nsha256:%x", method, path, timestamp, bodyHash))
}

// APIRequestSigner signs requests sent to a node runner. The CLI and tests use it.
type APIRequestSigner struct {
	privateKey ed25519.PrivateKey
	now        func() time.Time
}

func NewAPIRequestSigner(privateKeyBase64 string) (*APIRequestSigner, error) {
	privateKeyBytes, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	if len(privateKeyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: expected %d, got %d", ed25519.PrivateKeySize, len(privateKeyBytes))
	}

	return &APIRequestSigner{
		privateKey: ed25519.PrivateKey(privateKeyBytes),
		now:        time.Now,
	}, nil
}

// SignRequest returns the signature headers for a request.
func (s *APIRequestSigner) SignRequest(method, path string, body []byte) map[string]string {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	signature := ed25519.Sign(s.privateKey, canonicalRequest(method, path, timestamp, body))

	return map[string]string{
		SignatureHeader: signaturePrefix + base64.StdEncoding.EncodeToString(signature),
		TimestampHeader: timestamp,
	}
}

type APISignatureVerifier struct {
	publicKey ed25519.PublicKey
	now       func() time.Time
}

func NewAPISignatureVerifier(publicKeyBase64 string) (*APISignatureVerifier, error) {
	publicKeyBytes, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	if len(publicKeyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: expected %d, got %d", ed25519.PublicKeySize, len(publicKeyBytes))
	}

	return &APISignatureVerifier{
		publicKey: ed25519.PublicKey(publicKeyBytes),
		now:       time.Now,
	}, nil
}

func (v *APISignatureVerifier) VerifyRequest(method, path, signatureHeader, timestampHeader string, body []byte) error {
	signatureB64, ok := strings.CutPrefix(signatureHeader, signaturePrefix)
	if !ok || signatureB64 == "" {
		return ErrInvalidSignatureFormat
	}

	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	timestamp, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	skew := v.now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}

	if skew > MaxClockSkew {
		return ErrTimestampOutOfWindow
	}

	if !ed25519.Verify(v.publicKey, canonicalRequest(method, path, timestampHeader, body), signature) {
		return ErrSignatureMismatch
	}

	return nil
}

// GenerateSigningKeyPair returns a base64 Ed25519 private and public key.
func GenerateSigningKeyPair() (privateKey string, publicKey string, err error) {
	public, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate signing key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(private), base64.StdEncoding.EncodeToString(public), nil
}

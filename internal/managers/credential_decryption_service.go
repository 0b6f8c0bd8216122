package managers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrCredentialExpired = errors.New("credential expired")
)

// EncryptedCredential is a credential payload sealed for one executor: X25519 key
// agreement, an HKDF-derived key and ChaCha20-Poly1305.
type EncryptedCredential struct {
	ID                 string `json:"id" mapstructure:"id"`
	EphemeralPublicKey []byte `json:"ephemeral_public_key" mapstructure:"ephemeral_public_key"`
	EncryptedPayload   []byte `json:"encrypted_payload" mapstructure:"encrypted_payload"`
	Nonce              []byte `json:"nonce" mapstructure:"nonce"`
	ExpiresAt          int64  `json:"expires_at" mapstructure:"expires_at"`
	ExecutorID         string `json:"executor_id" mapstructure:"executor_id"`
}

type CredentialDecryptionService struct {
	privateKey string // base64 X25519 private key
	now        func() time.Time
}

func NewCredentialDecryptionService(privateKeyBase64 string) *CredentialDecryptionService {
	return &CredentialDecryptionService{
		privateKey: privateKeyBase64,
		now:        time.Now,
	}
}

func (s *CredentialDecryptionService) DecryptCredential(encryptedCred EncryptedCredential) ([]byte, error) {
	if encryptedCred.ExpiresAt > 0 && s.now().Unix() > encryptedCred.ExpiresAt {
		return nil, ErrCredentialExpired
	}

	executorPrivateKey, err := decodeX25519Key(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode executor private key: %w", err)
	}

	sharedSecret, err := curve25519.X25519(executorPrivateKey, encryptedCred.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to compute shared secret: %w", err)
	}

	encryptionKey, err := deriveEncryptionKey(sharedSecret, encryptedCred.ExecutorID)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, encryptedCred.Nonce, encryptedCred.EncryptedPayload, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credential payload: %w", err)
	}

	return plaintext, nil
}

// EncryptCredential seals payload for the holder of executorPublicKeyBase64.
func EncryptCredential(payload []byte, executorPublicKeyBase64, executorID string, ttl time.Duration) (EncryptedCredential, error) {
	executorPublicKey, err := decodeX25519Key(executorPublicKeyBase64)
	if err != nil {
		return EncryptedCredential{}, fmt.Errorf("failed to decode executor public key: %w", err)
	}

	ephemeralPrivateKey := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(ephemeralPrivateKey); err != nil {
		return EncryptedCredential{}, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}

	ephemeralPublicKey, err := curve25519.X25519(ephemeralPrivateKey, curve25519.Basepoint)
	if err != nil {
		return EncryptedCredential{}, fmt.Errorf("failed to derive ephemeral public key: %w", err)
	}

	sharedSecret, err := curve25519.X25519(ephemeralPrivateKey, executorPublicKey)
	if err != nil {
		return EncryptedCredential{}, fmt.Errorf("failed to compute shared secret: %w", err)
	}

	encryptionKey, err := deriveEncryptionKey(sharedSecret, executorID)
	if err != nil {
		return EncryptedCredential{}, err
	}

	aead, err := chacha20poly1305.New(encryptionKey)
	if err != nil {
		return EncryptedCredential{}, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return EncryptedCredential{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	encrypted := EncryptedCredential{
		EphemeralPublicKey: ephemeralPublicKey,
		EncryptedPayload:   aead.Seal(nil, nonce, payload, nil),
		Nonce:              nonce,
		ExecutorID:         executorID,
	}

	if ttl > 0 {
		encrypted.ExpiresAt = time.Now().Add(ttl).Unix()
	}

	return encrypted, nil
}

// GenerateX25519KeyPair returns a base64 private and public key.
func GenerateX25519KeyPair() (privateKey string, publicKey string, err error) {
	private := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(private); err != nil {
		return "", "", fmt.Errorf("failed to generate private key: %w", err)
	}

	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive public key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(private), base64.StdEncoding.EncodeToString(public), nil
}

func decodeX25519Key(base64Key string) ([]byte, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}

	if len(keyBytes) != curve25519.PointSize {
		return nil, fmt.Errorf("invalid key length: expected %d bytes, got %d", curve25519.PointSize, len(keyBytes))
	}

	return keyBytes, nil
}

func deriveEncryptionKey(sharedSecret []byte, executorID string) ([]byte, error) {
	salt := []byte("qiniu-node-credentials")
	info := []byte("encryption-key-" + executorID)

	reader := hkdf.New(sha256.New, sharedSecret, salt, info)
	key := make([]byte, chacha20poly1305.KeySize)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	return key, nil
}

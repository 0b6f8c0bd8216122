package initialization

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/auth"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/managers"

	"github.com/rs/xid"
)

// CryptoKeys holds the key pairs a deployment needs: X25519 for sealed credentials and
// Ed25519 for signed execution requests.
type CryptoKeys struct {
	ExecutorID     string `json:"executor_id" yaml:"executor_id"`
	X25519Private  string `json:"x25519_private" yaml:"x25519_private"`
	X25519Public   string `json:"x25519_public" yaml:"x25519_public"`
	Ed25519Private string `json:"ed25519_private" yaml:"ed25519_private"`
	Ed25519Public  string `json:"ed25519_public" yaml:"ed25519_public"`
}

// GenerateAllKeys creates fresh key pairs. executorID is generated when empty.
func GenerateAllKeys(executorID string) (CryptoKeys, error) {
	var keys CryptoKeys

	if executorID == "" {
		executorID = GenerateExecutorID()
	}

	x25519Private, x25519Public, err := managers.GenerateX25519KeyPair()
	if err != nil {
		return keys, fmt.Errorf("failed to generate X25519 keys: %w", err)
	}

	ed25519Private, ed25519Public, err := auth.GenerateSigningKeyPair()
	if err != nil {
		return keys, fmt.Errorf("failed to generate Ed25519 keys: %w", err)
	}

	keys.ExecutorID = executorID
	keys.X25519Private = x25519Private
	keys.X25519Public = x25519Public
	keys.Ed25519Private = ed25519Private
	keys.Ed25519Public = ed25519Public

	return keys, nil
}

func GenerateExecutorID() string {
	return "qiniu-node-" + xid.New().String()
}

type SealCredentialParams struct {
	Credential      map[string]any
	X25519PublicKey string
	ExecutorID      string
	TTL             time.Duration
}

// SealCredential encrypts a credential for the executor holding the matching X25519
// private key. The result can be placed under credentials in the config file.
func SealCredential(params SealCredentialParams) (managers.EncryptedCredential, error) {
	if len(params.Credential) == 0 {
		return managers.EncryptedCredential{}, fmt.Errorf("credential cannot be empty")
	}

	if params.ExecutorID == "" {
		return managers.EncryptedCredential{}, fmt.Errorf("executor id is required")
	}

	payload, err := json.Marshal(params.Credential)
	if err != nil {
		return managers.EncryptedCredential{}, fmt.Errorf("failed to encode credential: %w", err)
	}

	return managers.EncryptCredential(payload, params.X25519PublicKey, params.ExecutorID, params.TTL)
}

package managers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

// CredentialManager serves credentials configured for this process. An entry is either
// a plain JSON object or an EncryptedCredential sealed for this executor.
type CredentialManager struct {
	credentials   map[string]json.RawMessage
	defaultID     string
	decryptionSvc *CredentialDecryptionService
}

type CredentialManagerOpts struct {
	Credentials map[string]any
	// DefaultCredential is served when a request names no credential.
	DefaultCredential any
	// X25519PrivateKey enables encrypted entries.
	X25519PrivateKey string
}

const defaultCredentialID = "default"

func NewCredentialManager(opts CredentialManagerOpts) (*CredentialManager, error) {
	manager := &CredentialManager{
		credentials: map[string]json.RawMessage{},
	}

	for id, credential := range opts.Credentials {
		encoded, err := json.Marshal(credential)
		if err != nil {
			return nil, fmt.Errorf("failed to encode credential %s: %w", id, err)
		}

		manager.credentials[id] = encoded
	}

	if opts.DefaultCredential != nil {
		encoded, err := json.Marshal(opts.DefaultCredential)
		if err != nil {
			return nil, fmt.Errorf("failed to encode default credential: %w", err)
		}

		if _, exists := manager.credentials[defaultCredentialID]; !exists {
			manager.credentials[defaultCredentialID] = encoded
		}

		manager.defaultID = defaultCredentialID
	}

	if opts.X25519PrivateKey != "" {
		manager.decryptionSvc = NewCredentialDecryptionService(opts.X25519PrivateKey)
	}

	return manager, nil
}

func (m *CredentialManager) GetDecryptedCredential(ctx context.Context, credentialID string) ([]byte, error) {
	if credentialID == "" {
		credentialID = m.defaultID
	}

	payload, ok := m.credentials[credentialID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCredentialNotFound, credentialID)
	}

	var encrypted EncryptedCredential
	if err := json.Unmarshal(payload, &encrypted); err != nil || len(encrypted.EncryptedPayload) == 0 {
		return payload, nil
	}

	if m.decryptionSvc == nil {
		return nil, fmt.Errorf("credential %q is encrypted but no executor private key is configured", credentialID)
	}

	decrypted, err := m.decryptionSvc.DecryptCredential(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credential %q: %w", credentialID, err)
	}

	return decrypted, nil
}

// CredentialGetter decodes credentials from a store into T.
type CredentialGetter[T any] struct {
	store domain.CredentialStore
}

func NewCredentialGetter[T any](store domain.CredentialStore) *CredentialGetter[T] {
	return &CredentialGetter[T]{
		store: store,
	}
}

func (g *CredentialGetter[T]) GetDecryptedCredential(ctx context.Context, credentialID string) (T, error) {
	var zero T

	if g.store == nil {
		return zero, fmt.Errorf("%w: no credential store configured", domain.ErrCredentialNotFound)
	}

	decryptedBytes, err := g.store.GetDecryptedCredential(ctx, credentialID)
	if err != nil {
		return zero, fmt.Errorf("failed to get credential: %w", err)
	}

	var result T
	if err := json.Unmarshal(decryptedBytes, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return result, nil
}

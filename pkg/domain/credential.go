package domain

import (
	"context"
	"errors"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
)

// CredentialStore returns the decrypted JSON payload of a credential.
type CredentialStore interface {
	GetDecryptedCredential(ctx context.Context, credentialID string) ([]byte, error)
}

type CredentialGetter[T any] interface {
	GetDecryptedCredential(ctx context.Context, credentialID string) (T, error)
}

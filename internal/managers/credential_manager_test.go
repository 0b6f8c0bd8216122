package managers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCredential struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

func TestCredentialManager_Plain(t *testing.T) {
	manager, err := NewCredentialManager(CredentialManagerOpts{
		Credentials: map[string]any{
			"prod": map[string]any{"api_key": "prod-key", "base_url": "https://example.test/v1"},
		},
		DefaultCredential: map[string]any{"api_key": "default-key"},
	})
	require.NoError(t, err)

	getter := NewCredentialGetter[testCredential](manager)

	tests := []struct {
		name         string
		credentialID string
		want         testCredential
		wantErr      error
	}{
		{name: "named", credentialID: "prod", want: testCredential{APIKey: "prod-key", BaseURL: "https://example.test/v1"}},
		{name: "empty id uses default", credentialID: "", want: testCredential{APIKey: "default-key"}},
		{name: "explicit default", credentialID: "default", want: testCredential{APIKey: "default-key"}},
		{name: "unknown", credentialID: "missing", wantErr: domain.ErrCredentialNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getter.GetDecryptedCredential(context.Background(), tt.credentialID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentialManager_Encrypted(t *testing.T) {
	privateKey, publicKey, err := GenerateX25519KeyPair()
	require.NoError(t, err)

	sealed, err := EncryptCredential([]byte(`{"api_key":"sealed-key"}`), publicKey, "executor-1", time.Hour)
	require.NoError(t, err)

	// Round trip through JSON the way a config file would carry it.
	encoded, err := json.Marshal(sealed)
	require.NoError(t, err)

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(encoded, &entry))

	t.Run("decrypts with the executor key", func(t *testing.T) {
		manager, err := NewCredentialManager(CredentialManagerOpts{
			Credentials:      map[string]any{"sealed": entry},
			X25519PrivateKey: privateKey,
		})
		require.NoError(t, err)

		got, err := NewCredentialGetter[testCredential](manager).GetDecryptedCredential(context.Background(), "sealed")
		require.NoError(t, err)
		assert.Equal(t, "sealed-key", got.APIKey)
	})

	t.Run("requires a private key", func(t *testing.T) {
		manager, err := NewCredentialManager(CredentialManagerOpts{
			Credentials: map[string]any{"sealed": entry},
		})
		require.NoError(t, err)

		_, err = manager.GetDecryptedCredential(context.Background(), "sealed")
		assert.ErrorContains(t, err, "no executor private key")
	})

	t.Run("wrong key fails", func(t *testing.T) {
		otherPrivate, _, err := GenerateX25519KeyPair()
		require.NoError(t, err)

		manager, err := NewCredentialManager(CredentialManagerOpts{
			Credentials:      map[string]any{"sealed": entry},
			X25519PrivateKey: otherPrivate,
		})
		require.NoError(t, err)

		_, err = manager.GetDecryptedCredential(context.Background(), "sealed")
		assert.Error(t, err)
	})
}

func TestCredentialDecryptionService_Expired(t *testing.T) {
	privateKey, publicKey, err := GenerateX25519KeyPair()
	require.NoError(t, err)

	sealed, err := EncryptCredential([]byte(`{}`), publicKey, "executor-1", time.Minute)
	require.NoError(t, err)

	svc := NewCredentialDecryptionService(privateKey)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = svc.DecryptCredential(sealed)
	assert.ErrorIs(t, err, ErrCredentialExpired)
}

func TestCredentialGetter_NoStore(t *testing.T) {
	_, err := NewCredentialGetter[testCredential](nil).GetDecryptedCredential(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

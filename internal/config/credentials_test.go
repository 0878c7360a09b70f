package config

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
	"testing"
)

func encryptForTest(t *testing.T, key []byte, plain string) string {
	t.Helper()

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("chave AES inválida: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("erro ao criar GCM: %v", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed)
}

func TestDecryptValueRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	encoded := encryptForTest(t, key, "senha-do-oracle")

	plain, err := decryptValue(key, encoded)
	if err != nil {
		t.Fatalf("decryptValue retornou erro: %v", err)
	}
	if plain != "senha-do-oracle" {
		t.Errorf("decryptValue = %q, want %q", plain, "senha-do-oracle")
	}
}

func TestDecryptValueErrors(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	tests := []struct {
		name    string
		key     []byte
		encoded string
		reason  string
	}{
		{
			name:    "base64 inválido",
			key:     key,
			encoded: "%%%",
			reason:  "base64",
		},
		{
			name:    "valor muito curto",
			key:     key,
			encoded: base64.StdEncoding.EncodeToString([]byte("curto")),
			reason:  "muito curto",
		},
		{
			name:    "chave errada",
			key:     []byte("fedcba9876543210fedcba9876543210"),
			encoded: encryptForTest(t, key, "segredo"),
			reason:  "decifração",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decryptValue(tt.key, tt.encoded)
			if err == nil {
				t.Fatal("decryptValue deveria retornar erro")
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("erro %q não contém %q", err.Error(), tt.reason)
			}
		})
	}
}

func TestDecryptIfNeededPassthrough(t *testing.T) {
	if v := decryptIfNeeded("ORACLE_PASSWORD", "texto-plano"); v != "texto-plano" {
		t.Errorf("valor sem prefixo deveria passar intacto: %q", v)
	}
}

func TestDecryptIfNeededWithKey(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	t.Setenv("CREDENTIAL_KEY", base64.StdEncoding.EncodeToString(key))

	encoded := encryptForTest(t, key, "senha")
	if v := decryptIfNeeded("TARGET_PASSWORD", EncryptedPrefix+encoded); v != "senha" {
		t.Errorf("decryptIfNeeded = %q, want %q", v, "senha")
	}
}

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
)

// EncryptedPrefix marca valores de ambiente cifrados com AES-GCM
const EncryptedPrefix = "enc:"

// decryptIfNeeded decifra o valor se ele tiver o prefixo "enc:". Falha de
// decifração é fatal: subir com uma credencial ilegível só adia o erro para
// a primeira conexão.
func decryptIfNeeded(name, value string) string {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return value
	}

	key, err := credentialKey()
	if err != nil {
		log.Fatalf("Falha ao carregar chave de credenciais para %s: %v", name, err)
	}

	plain, err := decryptValue(key, strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		log.Fatalf("Falha ao decifrar %s: %v", name, err)
	}

	return plain
}

// credentialKey carrega a chave AES de CREDENTIAL_KEY ou CREDENTIAL_KEY_FILE
func credentialKey() ([]byte, error) {
	if encoded := os.Getenv("CREDENTIAL_KEY"); encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("CREDENTIAL_KEY não é base64 válido: %v", err)
		}
		return key, nil
	}

	if path := os.Getenv("CREDENTIAL_KEY_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler CREDENTIAL_KEY_FILE: %v", err)
		}
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("conteúdo de CREDENTIAL_KEY_FILE não é base64 válido: %v", err)
		}
		return key, nil
	}

	return nil, fmt.Errorf("nenhuma chave configurada (CREDENTIAL_KEY ou CREDENTIAL_KEY_FILE)")
}

// decryptValue decifra um valor AES-GCM em base64, com o nonce prefixado ao
// texto cifrado
func decryptValue(key []byte, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("valor cifrado não é base64 válido: %v", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("chave AES inválida: %v", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("valor cifrado muito curto")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("falha na decifração: %v", err)
	}

	return string(plain), nil
}

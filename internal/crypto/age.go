// Package crypto decrypts age-encrypted restore archives.
package crypto

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// Suffix marks encrypted archives, e.g. site.tar.gz.age.
const Suffix = ".age"

// AgeDecryptor decrypts archives encrypted to one of its identities.
type AgeDecryptor struct {
	identities []age.Identity
}

// NewAgeDecryptor creates a decryptor from a private key file path.
func NewAgeDecryptor(privateKeyPath string) (*AgeDecryptor, error) {
	keyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read age private key from %s: %w", privateKeyPath, err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(keyData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identities: %w", err)
	}

	if len(identities) == 0 {
		return nil, fmt.Errorf("no age identities found in %s", privateKeyPath)
	}

	return &AgeDecryptor{identities: identities}, nil
}

// Decrypt wraps the reader with age decryption.
func (d *AgeDecryptor) Decrypt(r io.Reader) (io.Reader, error) {
	decrypted, err := age.Decrypt(r, d.identities...)
	if err != nil {
		return nil, fmt.Errorf("age decryption failed: %w", err)
	}
	return decrypted, nil
}

// DecryptFile decrypts path into dir, dropping the encryption suffix
// from the file name, and returns the decrypted file's path.
func (d *AgeDecryptor) DecryptFile(path, dir string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open encrypted archive %s: %w", path, err)
	}
	defer in.Close()

	decrypted, err := d.Decrypt(in)
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(path), Suffix)
	target := filepath.Join(dir, name)
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create decrypted archive %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, decrypted); err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", path, err)
	}
	return target, nil
}

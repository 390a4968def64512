// Package secrets sela e abre segredos com nacl/secretbox usando uma chave
// derivada de AUTH_SECRET
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var (
	ErrEmptyKey      = errors.New("chave de criptografia vazia")
	ErrInvalidSealed = errors.New("segredo selado inválido ou chave incorreta")
)

type Box struct {
	key [32]byte
}

func NewBox(secretKey string) (*Box, error) {
	if secretKey == "" {
		return nil, ErrEmptyKey
	}

	return &Box{key: sha256.Sum256([]byte(secretKey))}, nil
}

// Seal retorna nonce || conteúdo selado
func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, &b.key), nil
}

func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrInvalidSealed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrInvalidSealed
	}

	return plaintext, nil
}

package sealed

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
)

// ErrDecryptFailed covers both a wrong passphrase and a tampered value.
// AES-GCM cannot tell the two apart.
var ErrDecryptFailed = goerr.New("failed to decrypt stored value")

// Client decorates another Storage, encrypting every value with AES-GCM
// under a passphrase-derived key. Keys stay in plaintext; only values are
// sealed.
type Client struct {
	inner interfaces.Storage
	aead  cipher.AEAD
}

var _ interfaces.Storage = (*Client)(nil)

// New wraps inner with value encryption. The key is derived from the
// passphrase with SHA-256.
func New(inner interfaces.Storage, passphrase string) (*Client, error) {
	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build GCM")
	}

	return &Client{inner: inner, aead: aead}, nil
}

func (x *Client) seal(plaintext string) (string, error) {
	nonce := make([]byte, x.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", goerr.Wrap(err, "failed to generate nonce")
	}

	sealed := x.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (x *Client) open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", goerr.Wrap(ErrDecryptFailed, "stored value is not base64")
	}
	if len(sealed) < x.aead.NonceSize() {
		return "", goerr.Wrap(ErrDecryptFailed, "stored value is too short")
	}

	nonce, ciphertext := sealed[:x.aead.NonceSize()], sealed[x.aead.NonceSize():]
	plaintext, err := x.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", goerr.Wrap(ErrDecryptFailed, "authentication failed")
	}
	return string(plaintext), nil
}

func (x *Client) Get(ctx context.Context, key string) (string, error) {
	encoded, err := x.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return x.open(encoded)
}

func (x *Client) Set(ctx context.Context, key, value string) error {
	encoded, err := x.seal(value)
	if err != nil {
		return err
	}
	return x.inner.Set(ctx, key, encoded)
}

func (x *Client) Remove(ctx context.Context, key string) error {
	return x.inner.Remove(ctx, key)
}

func (x *Client) Clear(ctx context.Context) error {
	return x.inner.Clear(ctx)
}

func (x *Client) Close() error {
	return x.inner.Close()
}

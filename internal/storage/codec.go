package storage

import "github.com/clinikore/offlinesync/internal/crypto"

// Codec transforms the serialized queue before it reaches the backend and
// after it is read back. Backends store whatever bytes the codec produces.
type Codec interface {
	Encode(plaintext []byte) ([]byte, error)
	Decode(stored []byte) ([]byte, error)
}

// plainCodec stores the serialized queue as-is.
type plainCodec struct{}

func (plainCodec) Encode(plaintext []byte) ([]byte, error) { return plaintext, nil }
func (plainCodec) Decode(stored []byte) ([]byte, error)    { return stored, nil }

// PlainCodec returns the identity codec.
func PlainCodec() Codec {
	return plainCodec{}
}

// aesCodec seals the serialized queue with AES-256-GCM. Queued request
// bodies can carry patient and sales data, so encrypted-at-rest is the
// default for shared machines.
type aesCodec struct {
	key []byte
}

// NewEncryptedCodec derives the storage key from the installation secret.
func NewEncryptedCodec(secret []byte) (Codec, error) {
	key, err := crypto.DeriveStorageKey(secret)
	if err != nil {
		return nil, err
	}
	return &aesCodec{key: key}, nil
}

func (c *aesCodec) Encode(plaintext []byte) ([]byte, error) {
	sealed, err := crypto.Encrypt(plaintext, c.key)
	if err != nil {
		return nil, err
	}
	return []byte(sealed), nil
}

func (c *aesCodec) Decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, nil
	}
	return crypto.Decrypt(string(stored), c.key)
}

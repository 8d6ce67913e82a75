package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockSize is the AES block size in bytes, and the unit every CipherAdapter
// input/output is measured in.
const BlockSize = 16

var zeroIV = make([]byte, BlockSize)

// Ciph performs a single-block AES-ECB encryption of x under key. len(x)
// must be a positive multiple of BlockSize.
func Ciph(key, x []byte) ([]byte, error) {
	if len(x) == 0 || len(x)%BlockSize != 0 {
		return nil, fmt.Errorf("subtle: Ciph: input length %d is not a positive multiple of %d", len(x), BlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: Ciph: %w", err)
	}
	out := make([]byte, len(x))
	for i := 0; i < len(x); i += BlockSize {
		block.Encrypt(out[i:i+BlockSize], x[i:i+BlockSize])
	}
	return out, nil
}

// Prf computes AES-CBC-MAC over the block string x with a zero IV, and
// returns the final 16-byte block. It is equivalent to iterating
// Y <- E_K(Y xor X_j) starting from Y = 0.
func Prf(key, x []byte) ([]byte, error) {
	if len(x) == 0 || len(x)%BlockSize != 0 {
		return nil, fmt.Errorf("subtle: Prf: input length %d is not a positive multiple of %d", len(x), BlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: Prf: %w", err)
	}
	mode := cipher.NewCBCEncrypter(block, zeroIV)
	out := make([]byte, len(x))
	mode.CryptBlocks(out, x)
	return out[len(out)-BlockSize:], nil
}

// ValidAESKeyLen reports whether keyLen is a valid AES-128/192/256 key
// length.
func ValidAESKeyLen(keyLen int) bool {
	return keyLen == 16 || keyLen == 24 || keyLen == 32
}

// CbcEncrypt runs AES-CBC encryption over block-string x under the given
// key and 16-byte IV, returning the full ciphertext. Used by IFX: its
// subkey derivation calls it with a zero IV, and its per-round function
// with the derived subkey seed as the IV, which Prf's fixed zero IV does
// not allow.
func CbcEncrypt(key, iv, x []byte) ([]byte, error) {
	if len(x) == 0 || len(x)%BlockSize != 0 {
		return nil, fmt.Errorf("subtle: CbcEncrypt: input length %d is not a positive multiple of %d", len(x), BlockSize)
	}
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("subtle: CbcEncrypt: IV must be %d bytes", BlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: CbcEncrypt: %w", err)
	}
	mode := cipher.NewCBCEncrypter(block, iv)
	out := make([]byte, len(x))
	mode.CryptBlocks(out, x)
	return out, nil
}

// Package tinkfpe provides Tink integration for Format-Preserving Encryption.
// This file contains the factory function for creating FPE primitives from Tink keyset handles.
package tinkfpe

import (
	"fmt"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/vaultedge/fpe"
	"github.com/vaultedge/fpe/convert"
)

// FPE is a Tink-compatible interface for Format-Preserving Encryption
// operations, following Tink's primitive pattern (similar to
// tink.DeterministicAEAD). Deterministic: same plaintext + tweak + key
// always yields the same ciphertext.
type FPE interface {
	// Tokenize encrypts plaintext using format-preserving encryption,
	// returning a value with the same length and formatting.
	Tokenize(plaintext string) (string, error)

	// Detokenize decrypts a tokenized value. originalPlaintext is used
	// for alphabet detection to ensure consistency with Tokenize.
	Detokenize(tokenized string, originalPlaintext string) (string, error)
}

// New creates a new FPE primitive from a Tink keyset handle.
// This is the main entry point for users following Tink's pattern.
//
// Example:
//
//	handle, err := keyset.NewHandle(fpeKeyTemplate)
//	if err != nil {
//	    return err
//	}
//	primitive, err := tinkfpe.New(handle, []byte("tweak"))
//	if err != nil {
//	    return err
//	}
//	tokenized, err := primitive.Tokenize("123-45-6789")
func New(handle *keyset.Handle, tweak []byte) (FPE, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}

	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("failed to get primitives from handle: %w", err)
	}

	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("no primary key found in keyset")
	}

	keyID := primary.KeyID
	if keyID == 0 {
		return nil, fmt.Errorf("invalid key ID in primary entry")
	}

	// Extract the keyset using insecurecleartextkeyset (for unencrypted keysets).
	ks := insecurecleartextkeyset.KeysetMaterial(handle)

	var keyBytes []byte
	for _, key := range ks.Key {
		if key.KeyId != keyID {
			continue
		}
		keyData := key.KeyData
		if keyData == nil {
			continue
		}

		switch keyData.GetKeyMaterialType() {
		case 1: // ENCRYPTED
			return nil, fmt.Errorf("encrypted keys via KMS are not yet fully supported - use symmetric keys")
		case 2: // SYMMETRIC
			keyBytes = keyData.Value
		}
		break
	}

	if keyBytes == nil {
		return nil, fmt.Errorf("key with ID %d not found or unsupported key type", keyID)
	}

	// The alphabet, and therefore the radix, is only known once Tokenize or
	// Detokenize sees the plaintext, so the Codec gets a factory rather than
	// a single bound FF1 instance. maxTweakLen must cover the caller's tweak
	// even when it exceeds the default ceiling.
	maxTweakLen := uint32(fpe.MaxFF1TweakLen)
	if uint32(len(tweak)) > maxTweakLen {
		maxTweakLen = uint32(len(tweak))
	}
	newCipher := func(radix uint32) (convert.Cipher, error) {
		return fpe.NewFF1(radix, maxTweakLen)
	}

	return &convert.Codec{NewCipher: newCipher, Key: keyBytes, Tweak: tweak}, nil
}

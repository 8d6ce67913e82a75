// Package convert maps application-level strings onto the symbol arrays
// the core fpe package operates on. It is explicitly outside the
// cryptographic core: alphabet selection, format-character handling, and
// the Tokenize/Detokenize string convenience layer all live here, and the
// core package never imports this one.
package convert

import "fmt"

// SeparateFormatAndData splits s into a per-position format mask (true
// where s holds a formatting character such as '-', '.', ':', '@') and
// the alphanumeric data characters alone, in order.
func SeparateFormatAndData(s string) (formatMask []bool, data string) {
	mask := make([]bool, len(s))
	dataChars := make([]byte, 0, len(s))

	for i, char := range s {
		if isAlphanumeric(char) {
			mask[i] = false
			dataChars = append(dataChars, byte(char))
		} else {
			mask[i] = true
		}
	}
	return mask, string(dataChars)
}

// ReconstructWithFormat re-interleaves data with the formatting
// characters recorded in formatMask, pulled from original.
func ReconstructWithFormat(data string, formatMask []bool, original string) string {
	result := make([]byte, len(formatMask))
	dataIdx := 0
	for i := range formatMask {
		if formatMask[i] {
			result[i] = original[i]
			continue
		}
		if dataIdx < len(data) {
			result[i] = data[dataIdx]
			dataIdx++
		}
	}
	return string(result)
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// DetermineAlphabet picks a symbol alphabet wide enough to cover data's
// character classes: digits, letters, or both. Callers needing a fixed
// radix (e.g. to match a previously tokenized value) should supply their
// own alphabet instead.
func DetermineAlphabet(data string) string {
	hasDigits, hasLetters := false, false
	for _, c := range data {
		switch {
		case c >= '0' && c <= '9':
			hasDigits = true
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			hasLetters = true
		}
	}
	alphabet := ""
	if hasDigits {
		alphabet += "0123456789"
	}
	if hasLetters {
		alphabet += "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	}
	if alphabet == "" {
		alphabet = "0123456789"
	}
	return alphabet
}

// StringToSymbols maps each byte of s to its index in alphabet.
func StringToSymbols(s, alphabet string) ([]uint16, error) {
	index := make(map[byte]uint16, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		index[alphabet[i]] = uint16(i)
	}
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		sym, ok := index[s[i]]
		if !ok {
			return nil, fmt.Errorf("convert: character %q not in alphabet %q", s[i], alphabet)
		}
		out[i] = sym
	}
	return out, nil
}

// SymbolsToString is the inverse of StringToSymbols.
func SymbolsToString(symbols []uint16, alphabet string) (string, error) {
	out := make([]byte, len(symbols))
	for i, sym := range symbols {
		if int(sym) >= len(alphabet) {
			return "", fmt.Errorf("convert: symbol %d out of range for alphabet of size %d", sym, len(alphabet))
		}
		out[i] = alphabet[sym]
	}
	return string(out), nil
}

// Cipher is the subset of a core fpe driver's surface the Codec needs:
// symbol-array encrypt/decrypt under a key and tweak, for the one radix
// it was constructed with.
type Cipher interface {
	Encrypt(key, tweak []byte, x []uint16) ([]uint16, error)
	Decrypt(key, tweak []byte, y []uint16) ([]uint16, error)
}

// CipherFactory builds a Cipher for a given radix. Core drivers like FF1
// are bound to a fixed radix at construction time, so the Codec needs a
// factory rather than a single Cipher: the alphabet (and therefore the
// radix) is only known once Tokenize/Detokenize sees the plaintext.
type CipherFactory func(radix uint32) (Cipher, error)

// Codec adapts a Cipher's symbol-array interface to plain strings,
// handling alphabet selection and format-character passthrough. It plays
// the role the Tink FPE primitive exposes upward: Tokenize/Detokenize.
type Codec struct {
	NewCipher CipherFactory
	Key       []byte
	Tweak     []byte
}

// Tokenize encrypts plaintext, preserving any formatting characters and
// choosing an alphabet from its alphanumeric content.
func (c *Codec) Tokenize(plaintext string) (string, error) {
	formatMask, dataChars := SeparateFormatAndData(plaintext)
	if dataChars == "" {
		return plaintext, nil
	}
	alphabet := DetermineAlphabet(dataChars)

	symbols, err := StringToSymbols(dataChars, alphabet)
	if err != nil {
		return "", fmt.Errorf("convert: tokenize: %w", err)
	}
	cipher, err := c.NewCipher(uint32(len(alphabet)))
	if err != nil {
		return "", fmt.Errorf("convert: tokenize: %w", err)
	}
	encrypted, err := cipher.Encrypt(c.Key, c.Tweak, symbols)
	if err != nil {
		return "", fmt.Errorf("convert: tokenize: %w", err)
	}
	tokenizedData, err := SymbolsToString(encrypted, alphabet)
	if err != nil {
		return "", fmt.Errorf("convert: tokenize: %w", err)
	}
	return ReconstructWithFormat(tokenizedData, formatMask, plaintext), nil
}

// Detokenize decrypts a tokenized value. originalPlaintext supplies the
// alphabet (its character classes must match what Tokenize saw); pass ""
// to derive the alphabet from the tokenized value itself, which only
// works when every symbol class the original alphabet covered is still
// represented in the ciphertext.
func (c *Codec) Detokenize(tokenized, originalPlaintext string) (string, error) {
	formatMask, dataChars := SeparateFormatAndData(tokenized)
	if dataChars == "" {
		return tokenized, nil
	}

	var alphabet string
	if originalPlaintext != "" {
		_, originalData := SeparateFormatAndData(originalPlaintext)
		alphabet = DetermineAlphabet(originalData)
	} else {
		alphabet = DetermineAlphabet(dataChars)
	}

	symbols, err := StringToSymbols(dataChars, alphabet)
	if err != nil {
		return "", fmt.Errorf("convert: detokenize: %w", err)
	}
	cipher, err := c.NewCipher(uint32(len(alphabet)))
	if err != nil {
		return "", fmt.Errorf("convert: detokenize: %w", err)
	}
	decrypted, err := cipher.Decrypt(c.Key, c.Tweak, symbols)
	if err != nil {
		return "", fmt.Errorf("convert: detokenize: %w", err)
	}
	plainData, err := SymbolsToString(decrypted, alphabet)
	if err != nil {
		return "", fmt.Errorf("convert: detokenize: %w", err)
	}
	return ReconstructWithFormat(plainData, formatMask, tokenized), nil
}

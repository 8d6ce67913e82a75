// Command fpedemo exercises the tinkfpe registry integration end to end:
// it registers the FF1 key manager, loads or creates a keyset, tokenizes
// a handful of generated values across several formats, and verifies each
// round-trips.
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/vaultedge/fpe/tinkfpe"
)

func main() {
	keyManager := tinkfpe.NewKeyManager()
	if err := registry.RegisterKeyManager(keyManager); err != nil {
		log.Fatalf("failed to register FPE key manager: %v", err)
	}

	handle, err := loadOrCreateKeyset("fpe_keyset.json")
	if err != nil {
		log.Fatalf("failed to obtain keyset handle: %v", err)
	}

	tweak := []byte("tenant-1234|customer.ssn")
	primitive, err := tinkfpe.New(handle, tweak)
	if err != nil {
		log.Fatalf("failed to create FPE primitive: %v", err)
	}

	fmt.Println(strings.Repeat("=", 160))
	fmt.Printf("%-36s | %-36s | %-36s | %s\n", "Plaintext", "Tokenized", "Detokenized", "Match?")
	fmt.Println(strings.Repeat("-", 160))

	for i := 0; i < 25; i++ {
		plaintext := randomTestCase()
		if len(plaintext) < 4 {
			continue
		}

		tokenized, err := primitive.Tokenize(plaintext)
		if err != nil {
			fatal("tokenize failed", err)
		}
		detokenized, err := primitive.Detokenize(tokenized, plaintext)
		if err != nil {
			fatal("detokenize failed", err)
		}

		match := "false"
		if plaintext == detokenized {
			match = "true"
		}
		fmt.Printf("%-36s | %-36s | %-36s | %s\n", plaintext, tokenized, detokenized, match)
	}
}

// loadOrCreateKeyset loads an existing unencrypted keyset from filename, or
// generates and persists a new one. Production callers should encrypt the
// keyset with keyset.Write and an AEAD rather than using the cleartext path
// taken here for demo convenience.
func loadOrCreateKeyset(filename string) (*keyset.Handle, error) {
	if _, err := os.Stat(filename); err == nil {
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("open keyset: %w", err)
		}
		defer file.Close()
		handle, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(file))
		if err != nil {
			return nil, fmt.Errorf("read keyset: %w", err)
		}
		fmt.Printf("loaded existing keyset from %s\n", filename)
		return handle, nil
	}

	handle, err := keyset.NewHandle(tinkfpe.KeyTemplate())
	if err != nil {
		return nil, fmt.Errorf("create keyset handle: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create keyset file: %w", err)
	}
	defer file.Close()
	if err := insecurecleartextkeyset.Write(handle, keyset.NewJSONWriter(file)); err != nil {
		return nil, fmt.Errorf("write keyset: %w", err)
	}
	fmt.Printf("created new keyset, stored to %s\n", filename)
	return handle, nil
}

func randomTestCase() string {
	formatType, _ := rand.Int(rand.Reader, big.NewInt(6))
	switch formatType.Int64() {
	case 0:
		return fmt.Sprintf("%s-%s-%s", randomDigits(3), randomDigits(2), randomDigits(4)) // SSN
	case 1:
		return fmt.Sprintf("%s-%s-%s-%s", randomDigits(4), randomDigits(4), randomDigits(4), randomDigits(4)) // card
	case 2:
		return fmt.Sprintf("%s-%s-%s", randomDigits(3), randomDigits(3), randomDigits(4)) // phone
	case 3:
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		return randomAlphanumeric(int(n.Int64()) + 5)
	case 4:
		n, _ := rand.Int(rand.Reader, big.NewInt(15))
		return randomDigits(int(n.Int64()) + 5)
	default:
		month, _ := rand.Int(rand.Reader, big.NewInt(12))
		day, _ := rand.Int(rand.Reader, big.NewInt(28))
		year, _ := rand.Int(rand.Reader, big.NewInt(100))
		return fmt.Sprintf("%02d-%02d-%04d", month.Int64()+1, day.Int64()+1, year.Int64()+1950)
	}
}

func randomDigits(length int) string {
	out := make([]byte, length)
	for i := range out {
		d, _ := rand.Int(rand.Reader, big.NewInt(10))
		out[i] = byte('0' + d.Int64())
	}
	return string(out)
}

func randomAlphanumeric(length int) string {
	out := make([]byte, length)
	for i := range out {
		class, _ := rand.Int(rand.Reader, big.NewInt(3))
		switch class.Int64() {
		case 0:
			d, _ := rand.Int(rand.Reader, big.NewInt(10))
			out[i] = byte('0' + d.Int64())
		case 1:
			l, _ := rand.Int(rand.Reader, big.NewInt(26))
			out[i] = byte('A' + l.Int64())
		default:
			l, _ := rand.Int(rand.Reader, big.NewInt(26))
			out[i] = byte('a' + l.Int64())
		}
	}
	return string(out)
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

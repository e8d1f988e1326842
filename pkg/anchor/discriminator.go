package anchor

import (
	"crypto/sha256"
	"strings"
	"unicode"
)

const discriminatorLength = 8

// InstructionDiscriminator returns the 8-byte prefix Anchor expects for the
// instruction called name.
func InstructionDiscriminator(name string) []byte {
	return sighash("global", SnakeCase(name))
}

// AccountDiscriminator returns the 8-byte prefix of an account of type name.
func AccountDiscriminator(name string) []byte {
	return sighash("account", name)
}

func sighash(namespace, name string) []byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return sum[:discriminatorLength]
}

// SnakeCase converts camelCase identifiers to snake_case.
func SnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

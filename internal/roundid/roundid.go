// Package roundid mints sortable round identifiers: a UUIDv7 written as 26
// characters of Crockford base32.
package roundid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of every round id
const Length = 26

// Generator mints round ids, drawing randomness from an optional reader
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto randomness.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new round id from crypto randomness
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new round id. It panics if randomness is unavailable.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand != nil {
		id, err = uuid.NewV7FromReader(g.rand)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate round id: " + err.Error())
	}
	return Encode(id)
}

// Encode writes id as 26 base32 characters, most significant bits first.
// The two bits past the 128 are zero, so the first character is 0-7.
func Encode(id uuid.UUID) string {
	result := make([]byte, Length)

	// 130 bits: two leading zero bits then the uuid
	var acc uint16
	bits := 2
	i := 0
	for _, b := range id {
		acc = acc<<8 | uint16(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			result[i] = alphabet[(acc>>bits)&0x1f]
			i++
		}
		acc &= 1<<bits - 1
	}
	return string(result)
}

// Decode is the inverse of Encode
func Decode(s string) (uuid.UUID, error) {
	if err := Validate(s); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	var acc uint16
	bits := -2 // drop the two padding bits
	n := 0
	for i := 0; i < Length; i++ {
		acc = acc<<5 | uint16(strings.IndexByte(alphabet, s[i]))
		bits += 5
		if bits >= 8 {
			bits -= 8
			id[n] = byte(acc >> bits)
			n++
			acc &= 1<<bits - 1
		}
	}
	return id, nil
}

// Validate checks that id is 26 base32 characters of at most 128 bits
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("round id must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("round id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

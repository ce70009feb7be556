package orders

import "crypto/rand"

// OrderNumLen is the fixed length of the human-facing order number.
const OrderNumLen = 10

// alphabet leaves out 0/O and 1/I
const orderNumAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewOrderNum returns an opaque fixed-length token. Uniqueness is enforced
// at the store; callers retry on collision rather than overwrite.
func NewOrderNum() string {
	b := make([]byte, OrderNumLen)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = orderNumAlphabet[int(b[i])%len(orderNumAlphabet)]
	}
	return string(b)
}

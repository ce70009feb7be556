package stock

import (
	"fmt"
	"strings"
)

// Shortfall describes one line the ledger could not cover. Name is filled
// when the implementation has it at hand; Message falls back to the id.
type Shortfall struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Size      string `json:"size"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (s Shortfall) Message() string {
	name := s.Name
	if name == "" {
		name = s.ProductID
	}
	return fmt.Sprintf("%s (size %s): requested %d, available %d", name, s.Size, s.Requested, s.Available)
}

// InsufficientError aggregates every failing line of a batch deduction.
type InsufficientError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientError) Error() string {
	msgs := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		msgs = append(msgs, s.Message())
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

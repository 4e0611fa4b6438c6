// Package uuid generates run identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces UUIDv7 run IDs; v7 keeps them time-sortable in logs.
type Generator struct{}

// NewUUIDGenerator returns a Generator.
func NewUUIDGenerator() *Generator {
	return &Generator{}
}

// NewID implements assess.IDGenerator.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}

// Package repository provides the in-memory persistence used by the single
// process deployment. Every store guards its map with a mutex so concurrent
// request handlers can share one instance; swapping in a database later only
// means re-implementing these types.
package repository

import "fmt"

// NotFoundError reports an absent entity, distinct from validation failures.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// model/resource.go
package model

import "fmt"

// Operation is the kind of access requested for a resource.
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// ResourceKey addresses one logical data item across cache and storage.
// Qualifier is optional (version or shard hint); Type and ID are required.
type ResourceKey struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Qualifier string `json:"qualifier,omitempty"`
}

func (k ResourceKey) Validate() error {
	if k.Type == "" {
		return fmt.Errorf("resource type cannot be empty")
	}
	if k.ID == "" {
		return fmt.Errorf("resource id cannot be empty")
	}
	return nil
}

func (k ResourceKey) String() string {
	if k.Qualifier == "" {
		return fmt.Sprintf("%s/%s", k.Type, k.ID)
	}
	return fmt.Sprintf("%s/%s@%s", k.Type, k.ID, k.Qualifier)
}

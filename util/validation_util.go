// util/validation_util.go

package util

import (
	"encoding/json"
	"fmt"

	"github.com/notyourkokoro/FDB/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateResourceKey(key model.ResourceKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if len(key.Type) > 128 {
		return fmt.Errorf("resource type too long")
	}
	if len(key.ID) > 256 {
		return fmt.Errorf("resource id too long")
	}
	return nil
}

func (v *ValidationUtil) ValidateWritePayload(payload json.RawMessage) error {
	if len(payload) == 0 {
		return fmt.Errorf("write payload cannot be empty")
	}
	if !json.Valid(payload) {
		return fmt.Errorf("write payload must be valid JSON")
	}
	return nil
}

func (v *ValidationUtil) ValidateExpectedVersion(version int64) error {
	if version < 0 {
		return fmt.Errorf("expected version cannot be negative")
	}
	return nil
}

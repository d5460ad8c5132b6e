// util/validation_util_test.go

package util_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notyourkokoro/FDB/model"
	"github.com/notyourkokoro/FDB/util"
)

func TestValidateResourceKey(t *testing.T) {
	v := util.NewValidationUtil()

	assert.NoError(t, v.ValidateResourceKey(model.ResourceKey{Type: "doc", ID: "1"}))
	assert.Error(t, v.ValidateResourceKey(model.ResourceKey{ID: "1"}))
	assert.Error(t, v.ValidateResourceKey(model.ResourceKey{Type: "doc"}))
	assert.Error(t, v.ValidateResourceKey(model.ResourceKey{
		Type: strings.Repeat("x", 129), ID: "1",
	}))
}

func TestValidateWritePayload(t *testing.T) {
	v := util.NewValidationUtil()

	assert.NoError(t, v.ValidateWritePayload(json.RawMessage(`{"a":1}`)))
	assert.Error(t, v.ValidateWritePayload(nil))
	assert.Error(t, v.ValidateWritePayload(json.RawMessage(`{"a":`)))
}

func TestValidateExpectedVersion(t *testing.T) {
	v := util.NewValidationUtil()

	assert.NoError(t, v.ValidateExpectedVersion(0))
	assert.NoError(t, v.ValidateExpectedVersion(7))
	assert.Error(t, v.ValidateExpectedVersion(-1))
}

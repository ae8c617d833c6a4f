package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/amaumene/gostremiomux/internal/errors"
)

type sample struct {
	Name    string  `json:"name" validate:"required,max=5"`
	Timeout int     `json:"timeoutMs" validate:"gte=0,lte=100"`
	Items   []child `json:"items" validate:"dive"`
}

type child struct {
	Kind string `json:"kind" validate:"oneof=a b"`
}

func TestValidateReportsJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(sample{Name: "", Timeout: 200, Items: []child{{Kind: "c"}}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfigurationInvalid))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "timeoutMs must be less than or equal to 100")
	assert.Contains(t, err.Error(), "items[0].kind must be one of: a b")
}

func TestValidatePasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(sample{Name: "ok", Items: []child{{Kind: "a"}}}))
	assert.True(t, v.Check(sample{Name: "ok"}))
	assert.False(t, v.Check(sample{Name: "toolong"}))
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fraudscope/internal/errors"
	apiv1 "fraudscope/pkg/contracts/api/v1"
)

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{
			name:  "valid rates request",
			input: apiv1.GroupRatesRequest{Group: "merchantName", Target: "isFraud"},
		},
		{
			name:       "missing group",
			input:      apiv1.GroupRatesRequest{Target: "isFraud"},
			wantFields: []string{"group"},
		},
		{
			name:       "group equals target",
			input:      apiv1.GroupRatesRequest{Group: "isFraud", Target: "isFraud"},
			wantFields: []string{"target"},
		},
		{
			name:       "head too large",
			input:      apiv1.HeadRequest{N: 5000},
			wantFields: []string{"n"},
		},
		{
			name:       "negative head",
			input:      apiv1.HeadRequest{N: -1},
			wantFields: []string{"n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apperrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			details, ok := apiErr.Details.([]apperrors.ValidationError)
			require.True(t, ok)

			fields := make([]string, 0, len(details))
			for _, d := range details {
				fields = append(fields, d.Field)
				assert.NotEmpty(t, d.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?n=7&bad=seven&flag=true&nope=maybe", nil)

	n, err := QueryInt(req, "n", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = QueryInt(req, "missing", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = QueryInt(req, "bad", 5)
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	b, err := QueryBool(req, "flag", false)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = QueryBool(req, "nope", false)
	assert.Error(t, err)
}

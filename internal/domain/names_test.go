package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNetworkName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"simple", "storage", ""},
		{"dashes and digits", "rack-2-mgmt", ""},
		{"max length", "a" + strings.Repeat("b", MaxNameLength-1), ""},
		{"empty", "", "Network names cannot be empty."},
		{"too long", strings.Repeat("a", MaxNameLength+1), "Network names cannot exceed 100 characters."},
		{"underscore", "my_net", "Network names must only contain alphanumeric characters and dashes."},
		{"space", "my net", "Network names must only contain alphanumeric characters and dashes."},
		{"leading digit", "1net", "Network names must start with a letter and end with a letter or digit."},
		{"leading dash", "-net", "Network names must start with a letter and end with a letter or digit."},
		{"trailing dash", "net-", "Network names must start with a letter and end with a letter or digit."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNetworkName(tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var nerr *NameError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, "network", nerr.Kind)
			assert.Equal(t, tt.wantMsg, nerr.Message)
			assert.Equal(t, tt.wantMsg, UserMessage(err))
		})
	}
}

func TestValidateHostName(t *testing.T) {
	assert.NoError(t, ValidateHostName("compute-1"))

	err := ValidateHostName("")
	var nerr *NameError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "host", nerr.Kind)
	assert.Equal(t, "Hostnames cannot be empty.", nerr.Message)
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"duplicate", fmt.Errorf("%w: host h1", ErrDuplicateID), ReasonDuplicateID},
		{"validation", fmt.Errorf("%w: bad", ErrValidation), ReasonValidation},
		{"not found", fmt.Errorf("%w: port p1", ErrNotFound), ReasonNotFound},
		{"invalid connection", fmt.Errorf("%w: host to host", ErrInvalidConnection), ReasonInvalidConnection},
		{"network full", fmt.Errorf("%w: %w", ErrInvalidConnection, ErrNetworkFull), ReasonInvalidConnection},
		{"vlan conflict", fmt.Errorf("%w: eth0", ErrVlanConflict), ReasonVlanConflict},
		{"codec wins over cause", fmt.Errorf("%w: hosts[0]: %w", ErrCodec, ErrDuplicateID), ReasonCodec},
		{"unknown", errors.New("disk on fire"), ReasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonCode(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Only one untagged vlan per interface is allowed.",
		UserMessage(fmt.Errorf("%w: eth0", ErrVlanConflict)))
	assert.Equal(t, "This network has no free ports.",
		UserMessage(fmt.Errorf("%w: %w", ErrInvalidConnection, ErrNetworkFull)))
	assert.Equal(t, "The request is not valid.",
		UserMessage(fmt.Errorf("%w: second public network", ErrValidation)))
	assert.Equal(t, "The topology document could not be loaded.",
		UserMessage(fmt.Errorf("%w: %w", ErrCodec, ErrValidation)))
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConnectionTagState(t *testing.T) {
	c := Connection{ID: "c1", InterfaceID: "i1", PortID: "p1"}
	assert.Equal(t, TagStateUntagged, c.TagState())
	c.Tagged = true
	assert.Equal(t, TagStateTagged, c.TagState())
}

func TestConnectionFieldNames(t *testing.T) {
	c := Connection{ID: "c1", InterfaceID: "i1", PortID: "p1", Tagged: true}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","interfaceId":"i1","portId":"p1","tagged":true}`, string(data))

	out, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), "interfaceId: i1")
	assert.Contains(t, string(out), "portId: p1")
}

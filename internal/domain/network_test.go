package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkClone(t *testing.T) {
	n := Network{ID: "n1", Name: "lab", Ports: []Port{{ID: "n1-p1", NetworkID: "n1"}}}
	c := n.Clone()
	c.Ports[0].ID = "x"

	assert.Equal(t, "n1-p1", n.Ports[0].ID)
}

package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podnet/internal/domain"
)

const samplePrefill = `
networks:
  - name: storage
  - name: mgmt
hosts:
  - id: h1
    name: compute-1
    interfaces:
      - id: h1-eno1
        name: eno1
        connections:
          - network: public
            tagged: false
          - network: storage
            tagged: true
      - id: h1-eno2
        name: eno2
  - id: h2
    name: compute-2
    interfaces:
      - id: h2-eno1
        name: eno1
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(samplePrefill))
	require.NoError(t, err)

	assert.Equal(t, []domain.NetworkSpec{{Name: "storage"}, {Name: "mgmt"}}, p.Networks)

	specs := p.HostSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, "compute-1", specs[0].Name)
	assert.Equal(t, []domain.InterfaceSpec{{ID: "h1-eno1", Name: "eno1"}, {ID: "h1-eno2", Name: "eno2"}}, specs[0].Interfaces)

	conns := p.Connections()
	require.Len(t, conns, 2)
	assert.Equal(t, PendingConnection{HostID: "h1", InterfaceID: "h1-eno1", Network: "public", Tagged: false}, conns[0])
	assert.True(t, conns[1].Tagged)
}

func TestParseJSON(t *testing.T) {
	p, err := Parse(strings.NewReader(`{"networks":[{"name":"lab","public":true}],"hosts":[{"id":"h1","interfaces":[{"id":"i1"}]}]}`))
	require.NoError(t, err)
	assert.True(t, p.Networks[0].Public)
	assert.Equal(t, "i1", p.HostSpecs()[0].Interfaces[0].ID)
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, p.Hosts)
	assert.Empty(t, p.Networks)
}

func TestParseRejectsMissingIDs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"host without id", "hosts:\n  - name: x\n"},
		{"interface without id", "hosts:\n  - id: h1\n    interfaces:\n      - name: eno1\n"},
		{"connection without network", "hosts:\n  - id: h1\n    interfaces:\n      - id: i1\n        connections:\n          - tagged: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := Parse(strings.NewReader("hosts: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFileAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePrefill), 0644))

	p, err := LoadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Marshal(&buf))
	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

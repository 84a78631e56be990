package hub

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeNodeText = `# three nodes, unit costs
3
1.0
0 10 5
10 0 8
5 8 0   # flows
0 1 1
1 0 1
1 1 0
0 0 0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseText(t *testing.T) {
	inst, err := ParseText(strings.NewReader(threeNodeText))
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Size())
	assert.Equal(t, 8.0, inst.Flow(2, 1))
	assert.Equal(t, 1.0, inst.Cost(0, 2))
	assert.Equal(t, 1.0, inst.Alpha())
	assert.Equal(t, 15.0, inst.Outbound(0))
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", "", "missing size"},
		{"bad size", "three 1", "not an integer"},
		{"zero size", "0 1", "at least 1"},
		{"bad alpha", "1 x 0 0 5", "not a number"},
		{"truncated", "2 1 0 1 1 0 0 1", "truncated"},
		{"trailing", "1 1 0 0 5 6", "unexpected"},
		{"bad alpha range", "1 2 0 0 5", "alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tt.input))
			var me *MalformedInputError
			require.ErrorAs(t, err, &me)
			assert.Contains(t, me.Error(), tt.reason)
		})
	}
}

func TestLoadFormats(t *testing.T) {
	jsonDoc := `{"size": 3, "alpha": 1,
		"flow": [[0,10,5],[10,0,8],[5,8,0]],
		"cost": [[0,1,1],[1,0,1],[1,1,0]],
		"fixedCost": [0,0,0]}`
	yamlDoc := `size: 3
alpha: 1
flow: [[0,10,5],[10,0,8],[5,8,0]]
cost: [[0,1,1],[1,0,1],[1,1,0]]
fixedCost: [0,0,0]
`
	for name, content := range map[string]string{
		"instance.txt":  threeNodeText,
		"instance.dat":  threeNodeText,
		"instance.json": jsonDoc,
		"instance.yaml": yamlDoc,
		"instance.YML":  yamlDoc,
	} {
		t.Run(name, func(t *testing.T) {
			inst, err := Load(writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, 3, inst.Size())
			assert.Equal(t, 8.0, inst.Flow(1, 2))
			assert.True(t, inst.Symmetric())
		})
	}
}

func TestLoadErrorsCarryPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	tests := map[string]string{
		"missing file":  missing,
		"truncated":     writeFile(t, "short.txt", "3 1 0 10"),
		"unknown field": writeFile(t, "extra.json", `{"size":1,"alpha":1,"flow":[[0]],"cost":[[0]],"fixedCost":[1],"hubs":2}`),
		"size mismatch": writeFile(t, "size.yaml", "size: 2\nalpha: 1\nflow: [[0]]\ncost: [[0]]\nfixedCost: [1]\n"),
		"bad yaml":      writeFile(t, "bad.yml", "size: [\n"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(path)
			var me *MalformedInputError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, path, me.Path)
			assert.Contains(t, err.Error(), path)
		})
	}
}

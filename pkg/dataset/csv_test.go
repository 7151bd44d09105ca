package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{
			name:     "array_of_objects",
			raw:      `[{"name":"番組A","rank":1},{"rank":2,"tags":["x"],"live":true}]`,
			expected: "\ufefflive,name,rank,tags\n,番組A,1,\ntrue,,2,\"[\"\"x\"\"]\"\n",
		},
		{
			name:     "single_object",
			raw:      `{"b":null,"a":"v"}`,
			expected: "\ufeffa,b\nv,\n",
		},
		{
			name:      "array_of_scalars",
			raw:       `[1,2,3]`,
			expectErr: true,
		},
		{
			name:      "scalar",
			raw:       `"text"`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Decode([]byte(tt.raw))
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "out.csv")
			err = ExportCSV(payload, path)
			if tt.expectErr {
				assert.Error(t, err)
				_, statErr := os.Stat(path)
				assert.True(t, os.IsNotExist(statErr))
				return
			}
			require.NoError(t, err)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(content))
		})
	}
}

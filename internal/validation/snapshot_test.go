package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		document string
		wantErr  bool
	}{
		{
			name:     "empty array",
			document: `[]`,
		},
		{
			name:     "valid records",
			document: `[{"vector": [0.1, 0.2], "weight": 1.5, "interactionType": "like"}]`,
		},
		{
			name:     "record without vector is structurally valid",
			document: `[{"interactionType": "like"}]`,
		},
		{
			name:     "not an array",
			document: `{"vector": [0.1]}`,
			wantErr:  true,
		},
		{
			name:     "vector with non-numeric entries",
			document: `[{"vector": ["a", "b"]}]`,
			wantErr:  true,
		},
		{
			name:     "weight is not a number",
			document: `[{"vector": [0.1], "weight": "heavy"}]`,
			wantErr:  true,
		},
		{
			name:     "malformed JSON",
			document: `[{`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshot([]byte(tt.document))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package asset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPalette(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     []string
	}{
		{"palette present", `{"palette":["#112233","#445566"]}`, []string{"#112233", "#445566"}},
		{"empty palette", `{"palette":[]}`, []string{}},
		{"no palette key", `{"uploaded_by":"ops"}`, nil},
		{"malformed metadata", `{"palette":`, nil},
		{"no metadata", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &BrandingAsset{Type: TypeLogo}
			if tt.metadata != "" {
				a.Metadata = json.RawMessage(tt.metadata)
			}
			assert.Equal(t, tt.want, a.Palette())
		})
	}
}

func TestIsBroll(t *testing.T) {
	assert.True(t, (&BrandingAsset{Type: TypeBroll}).IsBroll())
	assert.True(t, (&BrandingAsset{Type: "b-roll"}).IsBroll())
	assert.False(t, (&BrandingAsset{Type: TypeLogo}).IsBroll())
}

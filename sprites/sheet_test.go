package sprites

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetYAML = `
pixelsPerUnit: 16
sprites:
  - name: idle_0
    rect: {x: 0, y: 0, width: 16, height: 16}
    pivot: {x: 0.5, y: 0}
  - name: idle_1
    rect: {x: 16, y: 0, width: 16, height: 16}
    pivot: {x: 0.5, y: 0}
  - name: jump
    rect: {x: 0, y: 16, width: 32, height: 16}
    pivot: {x: 0.5, y: 0.5}
`

func TestParse(t *testing.T) {
	sheet, err := Parse([]byte(sheetYAML))
	require.NoError(t, err)

	assert.Equal(t, 16.0, sheet.PixelsPerUnit)
	require.Len(t, sheet.Sprites, 3)
	assert.Equal(t, Rect{X: 16, Y: 0, Width: 16, Height: 16}, sheet.Sprites[1].Rect)
	assert.NoError(t, sheet.Validate(32, 32))

	_, err = Parse([]byte("sprites: [unclosed"))
	assert.Error(t, err)
}

// TestScale_Double mirrors the classic "make the whole game 2x" workflow.
func TestScale_Double(t *testing.T) {
	sheet, err := Parse([]byte(sheetYAML))
	require.NoError(t, err)

	require.NoError(t, sheet.Scale(2, 2))

	assert.Equal(t, 32.0, sheet.PixelsPerUnit)
	jump, ok := sheet.Find("jump")
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 32, Width: 64, Height: 32}, jump.Rect)
	assert.Equal(t, Pivot{X: 0.5, Y: 0.5}, jump.Pivot)
	assert.NoError(t, sheet.Validate(64, 64))
}

func TestScale_NonUniform(t *testing.T) {
	sheet := &Sheet{
		PixelsPerUnit: 100,
		Sprites:       []Sprite{{Name: "a", Rect: Rect{X: 10, Y: 10, Width: 20, Height: 40}}},
	}
	require.NoError(t, sheet.Scale(0.5, 3))

	assert.Equal(t, 50.0, sheet.PixelsPerUnit)
	assert.Equal(t, Rect{X: 5, Y: 30, Width: 10, Height: 120}, sheet.Sprites[0].Rect)
}

func TestScale_InvalidFactors(t *testing.T) {
	sheet := &Sheet{PixelsPerUnit: 1}
	assert.Error(t, sheet.Scale(0, 1))
	assert.Error(t, sheet.Scale(1, -2))
	assert.Equal(t, 1.0, sheet.PixelsPerUnit, "a rejected scale leaves the sheet untouched")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sprites []Sprite
		wantErr bool
	}{
		{"ok", []Sprite{{Name: "a", Rect: Rect{Width: 8, Height: 8}}}, false},
		{"missing name", []Sprite{{Rect: Rect{Width: 8, Height: 8}}}, true},
		{"duplicate", []Sprite{{Name: "a"}, {Name: "a"}}, true},
		{"negative", []Sprite{{Name: "a", Rect: Rect{X: -1, Width: 1, Height: 1}}}, true},
		{"outside", []Sprite{{Name: "a", Rect: Rect{X: 4, Width: 8, Height: 8}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Sheet{Sprites: tt.sprites}).Validate(8, 8)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	sheet, err := Parse([]byte(sheetYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hero.png"+SidecarSuffix)
	require.NoError(t, sheet.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sheet, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSidecarPath(t *testing.T) {
	p := SidecarPath("assets/hero.png")
	assert.Equal(t, "assets/hero.png.sprites.yaml", p)
	assert.True(t, IsSidecar(p))
	assert.False(t, IsSidecar("assets/hero.png"))
}

package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolution_GetMegaPixels checks the megapixel rounding for presets and edge cases.
func TestResolution_GetMegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		res      Resolution
		expected float64
	}{
		{
			name: "Full HD 1080p",
			res:  resolutions[ResolutionFHD],
			// 1920 * 1080 = 2,073,600 -> 2.07 MP
			expected: 2.07,
		},
		{
			name: "4K UHD",
			res:  resolutions[Resolution4K],
			// 3840 * 2160 = 8,294,400 -> 8.29 MP
			expected: 8.29,
		},
		{
			name: "4096 texture",
			res:  resolutions[ResolutionTex4096],
			// 4096 * 4096 = 16,777,216 -> 16.78 MP
			expected: 16.78,
		},
		{
			name:     "Zero Width",
			res:      Resolution{Pixels: ResolutionPixels{Width: 0, Height: 1080}},
			expected: 0.0,
		},
		{
			name:     "Negative Height",
			res:      Resolution{Pixels: ResolutionPixels{Width: 1920, Height: -1}},
			expected: 0.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.res.GetMegaPixels())
		})
	}
}

// TestResolution_String verifies the human-readable string output for a resolution.
func TestResolution_String(t *testing.T) {
	assert.Equal(t, "1080p (1920x1080)", resolutions[ResolutionFHD].String())
	assert.Equal(t, "17x3", Resolution{Pixels: ResolutionPixels{Width: 17, Height: 3}}.String())
}

func TestGetResolutionByType(t *testing.T) {
	testCases := []struct {
		name          string
		input         ResolutionType
		expectedFound bool
		expectedName  ResolutionType
	}{
		{"720p", ResolutionHD, true, ResolutionHD},
		{"upper case 4K", "4K", true, Resolution4K},
		{"texture", ResolutionTex256, true, ResolutionTex256},
		{"invalid", "InvalidType", false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, found := GetResolutionByType(tc.input)
			assert.Equal(t, tc.expectedFound, found)
			assert.Equal(t, tc.expectedName, res.Name)
		})
	}
}

func TestGetAllResolutions_Ordered(t *testing.T) {
	all := GetAllResolutions()
	require.Len(t, all, len(resolutions))
	assert.Equal(t, ResolutionTex16, all[0].Name)
	for i := 1; i < len(all); i++ {
		prev := all[i-1].Pixels.Width * all[i-1].Pixels.Height
		cur := all[i].Pixels.Width * all[i].Pixels.Height
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestParseResolution(t *testing.T) {
	testCases := []struct {
		input   string
		width   int
		height  int
		wantErr bool
	}{
		{input: "1080p", width: 1920, height: 1080},
		{input: "tex32", width: 32, height: 32},
		{input: "640x480", width: 640, height: 480},
		{input: " 32X16 ", width: 32, height: 16},
		{input: "0x10", width: 0, height: 10},
		{input: "-1x10", wantErr: true},
		{input: "10x", wantErr: true},
		{input: "huge", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			res, err := ParseResolution(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.width, res.Pixels.Width)
			assert.Equal(t, tc.height, res.Pixels.Height)
		})
	}
}

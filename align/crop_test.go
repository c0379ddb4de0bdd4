package align

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-facealign/faces"
)

// TestPlanCrops_ThreeShiftedPortraits walks the reference scenario: three
// 100x100 images with eye midpoints 40/50/60 on the x axis. Every crop must
// be 80x100 and place its own midpoint at x-offset 40.
func TestPlanCrops_ThreeShiftedPortraits(t *testing.T) {
	dims := image.Pt(100, 100)
	midpoints := []faces.Point{
		{X: 40, Y: 50},
		{X: 50, Y: 50},
		{X: 60, Y: 50},
	}

	plan, err := PlanCrops(dims, midpoints)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(80, 100), plan.Size)
	assert.Equal(t, []image.Point{
		image.Pt(0, 0),
		image.Pt(10, 0),
		image.Pt(20, 0),
	}, plan.Origins)

	// Each image's own midpoint must land at the same offset inside its crop.
	for i, m := range midpoints {
		assert.Equal(t, 40, int(m.X)-plan.Origins[i].X, "midpoint x offset, image %d", i)
		assert.Equal(t, 50, int(m.Y)-plan.Origins[i].Y, "midpoint y offset, image %d", i)
	}
}

// TestPlanCrops_AlreadyAligned checks the no-op case: identical midpoints
// produce zero shifts and a crop equal to the full image.
func TestPlanCrops_AlreadyAligned(t *testing.T) {
	dims := image.Pt(120, 80)
	midpoints := []faces.Point{
		{X: 33, Y: 41},
		{X: 33, Y: 41},
		{X: 33, Y: 41},
		{X: 33, Y: 41},
	}

	plan, err := PlanCrops(dims, midpoints)
	require.NoError(t, err)

	assert.Equal(t, dims, plan.Size)
	for i, origin := range plan.Origins {
		assert.Equal(t, image.Pt(0, 0), origin, "origin of image %d", i)
	}
}

// TestPlanCrops_TruncatesOffsets pins the truncation (not rounding) behavior
// of the integer conversion.
func TestPlanCrops_TruncatesOffsets(t *testing.T) {
	dims := image.Pt(100, 100)
	midpoints := []faces.Point{
		{X: 40.5, Y: 50},
		{X: 41, Y: 50},
	}
	// Reference x = 40.75; shifts are +0.25 and -0.25, so the exact shared
	// width is 99.5 and must truncate to 99, never round to 100.
	plan, err := PlanCrops(dims, midpoints)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(99, 100), plan.Size)
	assert.Equal(t, image.Pt(0, 0), plan.Origins[0])
	// Exact origin 0.5 truncates to 0.
	assert.Equal(t, image.Pt(0, 0), plan.Origins[1])
}

// TestPlanCrops_DegenerateMidpoints verifies the fail-fast policy when the
// midpoints diverge by more than the image is wide.
func TestPlanCrops_DegenerateMidpoints(t *testing.T) {
	dims := image.Pt(100, 100)
	midpoints := []faces.Point{
		{X: 0, Y: 50},
		{X: 200, Y: 50},
	}

	_, err := PlanCrops(dims, midpoints)
	require.Error(t, err)

	var degenerate *DegenerateCropError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, -100, degenerate.Size.X)
}

// TestCropPlan_Apply verifies the plan slices pixel content at the right
// offsets and allocates fresh output images.
func TestCropPlan_Apply(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	marker := color.RGBA{R: 255, A: 255}
	src.Set(7, 3, marker)

	plan := CropPlan{
		Origins: []image.Point{image.Pt(5, 2)},
		Size:    image.Pt(4, 4),
	}
	out := plan.Apply([]image.Image{src})
	require.Len(t, out, 1)

	assert.Equal(t, 4, out[0].Bounds().Dx())
	assert.Equal(t, 4, out[0].Bounds().Dy())
	assert.Equal(t, marker, out[0].At(2, 1), "marker should land at source minus origin")

	// Mutating the crop must not write through to the source.
	out[0].(*image.RGBA).Set(0, 0, marker)
	assert.NotEqual(t, marker, src.At(5, 2))
}

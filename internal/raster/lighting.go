package raster

import (
	"math"

	"img2stl/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters for hillshading a
// relief seen from straight above.
type LightConfig struct {
	LightDir mathutil.Vec3 // towards the light
	HalfMain mathutil.Vec3 // precomputed half-vector for Blinn-Phong
	Albedo   float64       // linear grey level of the material
	Ambient  float64
	Direct   float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig returns a low north-west light, the usual cartographic
// hillshade direction, so raised areas cast readable shading.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{-1, 1, 1.2}.Normalize()
	viewDir := mathutil.Vec3{0, 0, 1}

	return LightConfig{
		LightDir: lightDir,
		HalfMain: lightDir.Add(viewDir).Normalize(),
		Albedo:   srgbToLinear[200],
		Ambient:  0.35,
		Direct:   0.95,
		SpecInt:  0.15,
		SpecPow:  16.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a face normal.
// Faces turned away from the light only get ambient.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	ndl := mathutil.Clamp(normal.Dot(lc.LightDir), 0, 1)
	ndh := mathutil.Clamp(normal.Dot(lc.HalfMain), 0, 1)
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + ndl*lc.Direct + spec
}

// Grey converts a shade scalar into an 8-bit sRGB grey level.
func (lc *LightConfig) Grey(shade float64) uint8 {
	lin := ACESTonemap(lc.Albedo * shade * lc.Exposure)
	return clamp255(math.Pow(lin, lc.InvGamma) * 255)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

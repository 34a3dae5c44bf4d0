package landmark

import (
	"testing"

	"github.com/ayusman/kuchipudi/internal/detector"
)

func TestBundle_ValidateRejectsNaN(t *testing.T) {
	var h detector.HandLandmarks
	h.Points[0] = detector.Point3D{X: nanValue(), Y: 0, Z: 0}
	b := Bundle{Hands: []detector.HandLandmarks{h}}

	if err := b.Validate(); err == nil {
		t.Error("expected validation error for NaN coordinate")
	}
}

func TestBundle_ValidateAcceptsWellFormed(t *testing.T) {
	var h detector.HandLandmarks
	b := Bundle{Hands: []detector.HandLandmarks{h}}

	if err := b.Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCentroid_IsMeanOfPoints(t *testing.T) {
	var h detector.HandLandmarks
	for i := range h.Points {
		h.Points[i] = detector.Point3D{X: 1, Y: 2, Z: 3}
	}
	c := Centroid(&h)
	if c.X != 1 || c.Y != 2 || c.Z != 3 {
		t.Errorf("expected centroid (1,2,3), got %+v", c)
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

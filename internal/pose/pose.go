// Package pose implements rule-based static hand pose classification.
//
// A pose is defined by the extension state of each of the five fingers plus
// an optional list of geometric constraints (distance or angle between named
// landmarks). Finger extension is derived from the landmark geometry itself
// rather than matched against a stored template, so a single definition
// covers the natural variation across hands and camera angles.
package pose

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ayusman/kuchipudi/internal/detector"
)

// FingerState is the binary extension state of a finger, or ANY to exclude
// it from matching.
type FingerState string

const (
	Extended FingerState = "extended"
	Curled   FingerState = "curled"
	Any      FingerState = "any"
)

// fingerTips and fingerPIPs give the landmark index pairs used to decide
// extension: thumb uses its IP joint in place of a PIP.
var (
	fingerTips = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerPIPs = [5]int{detector.ThumbIP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// ConstraintKind identifies the shape of a geometric constraint.
type ConstraintKind string

const (
	ConstraintDistance ConstraintKind = "distance"
	ConstraintAngle    ConstraintKind = "angle"
)

// Constraint is an additional geometric check on top of finger states.
// Distance constraints take two landmark indices; angle constraints take
// three, measuring the angle at the second (vertex) landmark.
type Constraint struct {
	Kind      ConstraintKind `json:"type"`
	Landmarks []int          `json:"landmarks"`
	Min       float64        `json:"min,omitempty"`
	Max       float64        `json:"max,omitempty"`
	MinAngle  float64        `json:"minAngle,omitempty"`
	MaxAngle  float64        `json:"maxAngle,omitempty"`
}

func (c Constraint) score(pts *[detector.NumLandmarks]detector.Point3D) float64 {
	switch c.Kind {
	case ConstraintDistance:
		if len(c.Landmarks) != 2 {
			return 1.0
		}
		a, b := pts[c.Landmarks[0]], pts[c.Landmarks[1]]
		d := dist(a, b)
		hi := c.Max
		if hi == 0 {
			hi = math.Inf(1)
		}
		if d >= c.Min && d <= hi {
			return 1.0
		}
		return 0.0
	case ConstraintAngle:
		if len(c.Landmarks) != 3 {
			return 1.0
		}
		a, b, cc := pts[c.Landmarks[0]], pts[c.Landmarks[1]], pts[c.Landmarks[2]]
		ba := sub(a, b)
		bc := sub(cc, b)
		cosAngle := dot(ba, bc) / (norm(ba)*norm(bc) + 1e-8)
		if cosAngle > 1 {
			cosAngle = 1
		} else if cosAngle < -1 {
			cosAngle = -1
		}
		angleDeg := math.Acos(cosAngle) * 180 / math.Pi
		lo, hi := c.MinAngle, c.MaxAngle
		if hi == 0 {
			hi = 180
		}
		if angleDeg >= lo && angleDeg <= hi {
			return 1.0
		}
		return 0.0
	default:
		return 1.0
	}
}

// Definition describes a single named pose in terms of per-finger states
// and optional geometric constraints, following GestureDefinition in the
// Python reference this registry is ported from.
type Definition struct {
	Name          string         `json:"name"`
	Thumb         FingerState    `json:"thumb"`
	Index         FingerState    `json:"index"`
	Middle        FingerState    `json:"middle"`
	Ring          FingerState    `json:"ring"`
	Pinky         FingerState    `json:"pinky"`
	MinConfidence float64        `json:"minConfidence"`
	Constraints   []Constraint   `json:"constraints,omitempty"`
}

func (d Definition) expected() [5]FingerState {
	return [5]FingerState{d.Thumb, d.Index, d.Middle, d.Ring, d.Pinky}
}

// fingerStates derives each finger's extension state from normalized
// landmarks: a finger is EXTENDED when its tip sits farther from the wrist
// than its PIP (or, for the thumb, its IP).
func fingerStates(pts *[detector.NumLandmarks]detector.Point3D) [5]FingerState {
	var states [5]FingerState
	wrist := pts[detector.Wrist]
	for i := 0; i < 5; i++ {
		tipDist := dist(pts[fingerTips[i]], wrist)
		pipDist := dist(pts[fingerPIPs[i]], wrist)
		if tipDist > pipDist {
			states[i] = Extended
		} else {
			states[i] = Curled
		}
	}
	return states
}

// Match scores normalized landmarks against this definition. The returned
// confidence blends the finger-state match ratio with the constraint
// satisfaction ratio 70/30 when constraints are present; with no
// constraints, confidence is the finger-state ratio alone. A definition
// with no checked fingers (all ANY) and no constraints matches with
// confidence 1.0.
func (d Definition) Match(hand *detector.HandLandmarks) (matched bool, confidence float64) {
	normalized := hand.Normalize()
	states := fingerStates(&normalized.Points)
	expected := d.expected()

	var matches, checked int
	for i := 0; i < 5; i++ {
		if expected[i] == Any {
			continue
		}
		checked++
		if states[i] == expected[i] {
			matches++
		}
	}

	fingerConfidence := 1.0
	if checked > 0 {
		fingerConfidence = float64(matches) / float64(checked)
	}

	confidence = fingerConfidence
	if len(d.Constraints) > 0 {
		confidence = 0.7*fingerConfidence + 0.3*d.constraintScore(&normalized.Points)
	}

	minConf := d.MinConfidence
	if minConf == 0 {
		minConf = 0.6
	}
	return confidence >= minConf, confidence
}

func (d Definition) constraintScore(pts *[detector.NumLandmarks]detector.Point3D) float64 {
	if len(d.Constraints) == 0 {
		return 1.0
	}
	var sum float64
	for _, c := range d.Constraints {
		sum += c.score(pts)
	}
	return sum / float64(len(d.Constraints))
}

// Registry holds the set of poses classification is evaluated against.
// Registration order is preserved and used to break ties: the
// first-registered definition wins among equally confident matches.
type Registry struct {
	poses []Definition
}

// NewRegistry returns an empty pose registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a pose definition. Last write for a given name does not
// replace an earlier one — duplicate names are allowed and evaluated in
// registration order, matching the append-only registry in the reference.
func (r *Registry) Register(d Definition) {
	r.poses = append(r.poses, d)
}

// Classify returns the best-scoring matching definition and its confidence,
// or ok=false if nothing in the registry clears its own threshold. Ties go
// to the earlier-registered definition since later candidates only replace
// the running best on a strictly greater confidence.
func (r *Registry) Classify(hand *detector.HandLandmarks) (name string, confidence float64, ok bool) {
	var bestConf float64
	var bestName string
	found := false

	for _, d := range r.poses {
		matched, conf := d.Match(hand)
		if matched && (!found || conf > bestConf) {
			bestConf = conf
			bestName = d.Name
			found = true
		}
	}

	return bestName, bestConf, found
}

// Definitions returns a copy of the registered pose definitions, in
// registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.poses))
	copy(out, r.poses)
	return out
}

// LoadJSON replaces the registry's contents with the definitions encoded in
// data, which must be a JSON object of the on-disk form {"poses": [...]}.
func (r *Registry) LoadJSON(data []byte) error {
	var doc struct {
		Poses []Definition `json:"poses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("pose: decode registry: %w", err)
	}
	r.poses = doc.Poses
	return nil
}

// MarshalJSON encodes the registry in the same {"poses": [...]} form that
// LoadJSON accepts.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Poses []Definition `json:"poses"`
	}{Poses: r.poses})
}

// DefaultRegistry returns the built-in pose set: open_hand, fist,
// thumbs_up, peace, pointing, rock_on and ok_sign, ported from the
// reference classifier's defaults, plus frame_l (one-handed L-shape used
// by the bimanual frame gesture) so every canvas draw-color entry and
// every bimanual shape check has a named pose behind it in this one
// registry.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Definition{
		Name: "open_hand",
		Thumb: Extended, Index: Extended, Middle: Extended, Ring: Extended, Pinky: Extended,
		MinConfidence: 0.6,
	})
	r.Register(Definition{
		Name: "fist",
		Thumb: Curled, Index: Curled, Middle: Curled, Ring: Curled, Pinky: Curled,
		MinConfidence: 0.6,
	})
	r.Register(Definition{
		Name: "thumbs_up",
		Thumb: Extended, Index: Curled, Middle: Curled, Ring: Curled, Pinky: Curled,
		MinConfidence: 0.6,
	})
	r.Register(Definition{
		Name: "peace",
		Thumb: Curled, Index: Extended, Middle: Extended, Ring: Curled, Pinky: Curled,
		MinConfidence: 0.6,
	})
	r.Register(Definition{
		Name: "pointing",
		Thumb: Curled, Index: Extended, Middle: Curled, Ring: Curled, Pinky: Curled,
		MinConfidence: 0.6,
	})
	r.Register(Definition{
		Name: "rock_on",
		Thumb: Curled, Index: Extended, Middle: Curled, Ring: Curled, Pinky: Extended,
		MinConfidence: 0.6,
	})
	r.Register(Definition{
		Name: "ok_sign",
		Thumb: Extended, Index: Extended, Middle: Extended, Ring: Extended, Pinky: Extended,
		MinConfidence: 0.5,
		Constraints: []Constraint{
			{Kind: ConstraintDistance, Landmarks: []int{detector.ThumbTip, detector.IndexTip}, Min: 0.0, Max: 0.15},
		},
	})
	r.Register(Definition{
		Name: "frame_l",
		Thumb: Extended, Index: Extended, Middle: Curled, Ring: Curled, Pinky: Any,
		MinConfidence: 0.6,
	})

	return r
}

func dist(a, b detector.Point3D) float64 {
	return norm(sub(a, b))
}

func sub(a, b detector.Point3D) detector.Point3D {
	return detector.Point3D{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func dot(a, b detector.Point3D) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func norm(a detector.Point3D) float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

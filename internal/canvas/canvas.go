// Package canvas turns a per-hand pose stream into virtual finger-painting
// draw commands: lines while a pointing hand moves, color changes per
// pose, erasing on a fist, and a shake-to-clear gesture on an open hand.
package canvas

// Point2 is a 2-D canvas coordinate in normalized [0,1] space.
type Point2 struct {
	X, Y float64
}

// CommandKind distinguishes the drawing operations a painter can emit.
type CommandKind int

const (
	CommandLine CommandKind = iota
	CommandErase
	CommandClear
	CommandColor
)

// Command is one drawing instruction emitted by the painter.
type Command struct {
	Kind  CommandKind
	From  Point2
	To    Point2
	Color string
	Hand  int64
}

const (
	LineWidth      = 3.0
	EraseRadius    = 25.0
	MaxHistory     = 10000
	smoothFrames   = 3
	moveThreshold  = 0.003 // squared-distance
	shakeWindow    = 1.5
	shakeCooldown  = 2.0
	shakeMinFlips  = 4
	shakeBufferLen = 15
)

// GestureColors maps a classified pose to the stroke color it selects.
var GestureColors = map[string]string{
	"pointing":  "#ffffff",
	"peace":     "#22c55e",
	"rock_on":   "#ef4444",
	"ok_sign":   "#3b82f6",
	"thumbs_up": "#eab308",
}

type handState struct {
	smoothBuf    []Point2
	lastPoint    Point2
	hasLastPoint bool
	drawing      bool
	currentColor string

	shakeBuf   []shakeSample
	lastClear  float64
	hasCleared bool
}

type shakeSample struct {
	point Point2
	t     float64
}

// Painter maintains per-hand drawing state and a bounded command history.
type Painter struct {
	hands   map[int64]*handState
	history []Command
}

// NewPainter creates an empty painter.
func NewPainter() *Painter {
	return &Painter{hands: make(map[int64]*handState)}
}

// Feed observes a hand's classified pose and fingertip position for the
// current frame and returns the drawing commands it produces.
func (p *Painter) Feed(hand int64, pose string, fingertip Point2, timestamp float64) []Command {
	hs := p.hands[hand]
	if hs == nil {
		hs = &handState{currentColor: GestureColors["pointing"]}
		p.hands[hand] = hs
	}

	switch pose {
	case "fist":
		return p.endStrokeAndErase(hs, hand, fingertip, timestamp)
	case "open_hand":
		return p.feedShake(hs, hand, fingertip, timestamp)
	case "pointing", "peace", "rock_on", "ok_sign", "thumbs_up":
		return p.feedDraw(hs, hand, pose, fingertip, timestamp)
	default:
		hs.drawing = false
		hs.hasLastPoint = false
		hs.smoothBuf = nil
		return nil
	}
}

func (p *Painter) feedDraw(hs *handState, hand int64, pose string, point Point2, timestamp float64) []Command {
	var cmds []Command

	if color, ok := GestureColors[pose]; ok && color != hs.currentColor {
		hs.currentColor = color
		cmds = append(cmds, Command{Kind: CommandColor, Color: color, Hand: hand})
	}

	hs.smoothBuf = append(hs.smoothBuf, point)
	if len(hs.smoothBuf) > smoothFrames {
		hs.smoothBuf = hs.smoothBuf[len(hs.smoothBuf)-smoothFrames:]
	}
	smoothed := averagePoint(hs.smoothBuf)

	if !hs.hasLastPoint {
		hs.lastPoint = smoothed
		hs.hasLastPoint = true
		hs.drawing = true
		p.appendHistory(cmds...)
		return cmds
	}

	if squaredDist(hs.lastPoint, smoothed) < moveThreshold {
		p.appendHistory(cmds...)
		return cmds
	}

	cmds = append(cmds, Command{
		Kind:  CommandLine,
		From:  hs.lastPoint,
		To:    smoothed,
		Color: hs.currentColor,
		Hand:  hand,
	})
	hs.lastPoint = smoothed
	hs.drawing = true

	p.appendHistory(cmds...)
	return cmds
}

func (p *Painter) endStrokeAndErase(hs *handState, hand int64, point Point2, timestamp float64) []Command {
	hs.drawing = false
	hs.hasLastPoint = false
	hs.smoothBuf = nil

	cmd := Command{Kind: CommandErase, From: point, Hand: hand}
	p.appendHistory(cmd)
	return []Command{cmd}
}

func (p *Painter) feedShake(hs *handState, hand int64, point Point2, timestamp float64) []Command {
	hs.drawing = false
	hs.hasLastPoint = false
	hs.smoothBuf = nil

	hs.shakeBuf = append(hs.shakeBuf, shakeSample{point: point, t: timestamp})
	if len(hs.shakeBuf) > shakeBufferLen {
		hs.shakeBuf = hs.shakeBuf[len(hs.shakeBuf)-shakeBufferLen:]
	}
	cutoff := timestamp - shakeWindow
	i := 0
	for i < len(hs.shakeBuf) && hs.shakeBuf[i].t < cutoff {
		i++
	}
	if i > 0 {
		hs.shakeBuf = hs.shakeBuf[i:]
	}

	if hs.hasCleared && timestamp-hs.lastClear < shakeCooldown {
		return nil
	}

	if countReversals(hs.shakeBuf) >= shakeMinFlips {
		hs.shakeBuf = nil
		hs.hasCleared = true
		hs.lastClear = timestamp

		clearCmd := Command{Kind: CommandClear, Hand: hand}
		p.history = []Command{clearCmd}
		return []Command{clearCmd}
	}
	return nil
}

// countReversals counts the number of times horizontal direction flips
// across a sequence of samples.
func countReversals(samples []shakeSample) int {
	flips := 0
	lastDir := 0
	for i := 1; i < len(samples); i++ {
		dx := samples[i].point.X - samples[i-1].point.X
		dir := 0
		switch {
		case dx > 1e-4:
			dir = 1
		case dx < -1e-4:
			dir = -1
		default:
			continue
		}
		if lastDir != 0 && dir != lastDir {
			flips++
		}
		lastDir = dir
	}
	return flips
}

func (p *Painter) appendHistory(cmds ...Command) {
	p.history = append(p.history, cmds...)
	if len(p.history) > MaxHistory {
		keep := MaxHistory / 2
		trimmed := make([]Command, 0, keep+1)
		trimmed = append(trimmed, Command{Kind: CommandClear})
		trimmed = append(trimmed, p.history[len(p.history)-keep:]...)
		p.history = trimmed
	}
}

// History returns the accumulated draw command log.
func (p *Painter) History() []Command {
	return p.history
}

// Reset clears all accumulated state for a hand, or every hand if hand is nil.
func (p *Painter) Reset(hand *int64) {
	if hand == nil {
		p.hands = make(map[int64]*handState)
		p.history = nil
		return
	}
	delete(p.hands, *hand)
}

func averagePoint(points []Point2) Point2 {
	if len(points) == 0 {
		return Point2{}
	}
	var sum Point2
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(points))
	return Point2{X: sum.X / n, Y: sum.Y / n}
}

func squaredDist(a, b Point2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

package canvas

import "testing"

func TestPainter_DrawsLineOnMovement(t *testing.T) {
	p := NewPainter()

	p.Feed(0, "pointing", Point2{X: 0.1, Y: 0.1}, 0.0)
	cmds := p.Feed(0, "pointing", Point2{X: 0.5, Y: 0.5}, 0.1)

	found := false
	for _, c := range cmds {
		if c.Kind == CommandLine {
			found = true
		}
	}
	if !found {
		t.Error("expected a line command on hand movement")
	}
}

func TestPainter_NoLineBelowMoveThreshold(t *testing.T) {
	p := NewPainter()

	p.Feed(0, "pointing", Point2{X: 0.5, Y: 0.5}, 0.0)
	cmds := p.Feed(0, "pointing", Point2{X: 0.5001, Y: 0.5001}, 0.1)

	for _, c := range cmds {
		if c.Kind == CommandLine {
			t.Error("expected no line for sub-threshold movement")
		}
	}
}

func TestPainter_ColorChangesWithPose(t *testing.T) {
	p := NewPainter()

	cmds := p.Feed(0, "peace", Point2{X: 0.2, Y: 0.2}, 0.0)
	found := false
	for _, c := range cmds {
		if c.Kind == CommandColor && c.Color == GestureColors["peace"] {
			found = true
		}
	}
	if !found {
		t.Error("expected a color command for peace pose")
	}
}

func TestPainter_FistErasesAndEndsStroke(t *testing.T) {
	p := NewPainter()

	p.Feed(0, "pointing", Point2{X: 0.1, Y: 0.1}, 0.0)
	cmds := p.Feed(0, "fist", Point2{X: 0.1, Y: 0.1}, 0.1)

	if len(cmds) != 1 || cmds[0].Kind != CommandErase {
		t.Fatalf("expected a single erase command, got %v", cmds)
	}

	next := p.Feed(0, "pointing", Point2{X: 0.6, Y: 0.6}, 0.2)
	for _, c := range next {
		if c.Kind == CommandLine {
			t.Error("expected stroke to have ended, so no immediate line after fist")
		}
	}
}

func TestPainter_ShakeClearsAfterReversals(t *testing.T) {
	p := NewPainter()

	xs := []float64{0.1, 0.5, 0.1, 0.5, 0.1, 0.5}
	var fired bool
	for i, x := range xs {
		cmds := p.Feed(0, "open_hand", Point2{X: x, Y: 0.3}, float64(i)*0.1)
		for _, c := range cmds {
			if c.Kind == CommandClear {
				fired = true
			}
		}
	}
	if !fired {
		t.Error("expected a clear command after enough direction reversals")
	}
}

func TestPainter_NoneResetsDrawingState(t *testing.T) {
	p := NewPainter()

	p.Feed(0, "pointing", Point2{X: 0.1, Y: 0.1}, 0.0)
	p.Feed(0, "none", Point2{X: 0.1, Y: 0.1}, 0.1)
	cmds := p.Feed(0, "pointing", Point2{X: 0.6, Y: 0.6}, 0.2)

	for _, c := range cmds {
		if c.Kind == CommandLine {
			t.Error("expected no line immediately after a none-pose reset")
		}
	}
}

func TestPainter_HistoryAccumulates(t *testing.T) {
	p := NewPainter()

	p.Feed(0, "pointing", Point2{X: 0.1, Y: 0.1}, 0.0)
	p.Feed(0, "pointing", Point2{X: 0.6, Y: 0.6}, 0.1)

	if len(p.History()) == 0 {
		t.Error("expected history to accumulate drawing commands")
	}
}

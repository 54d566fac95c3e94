package irservo

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

type edgeRecorder struct {
	got []EdgeFlags
}

func (r *edgeRecorder) HandleEdges(e EdgeFlags) { r.got = append(r.got, e) }

func TestEdgeLatch(t *testing.T) {
	c := qt.New(t)

	var (
		l       EdgeLatch
		rec     edgeRecorder
		settled int
	)
	l.Settle = func() {
		settled++
		// an edge during the settle delay is lost
		l.Latch(EdgeFalling)
	}

	l.Service(&rec)
	c.Assert(rec.got, qt.HasLen, 0)
	c.Assert(settled, qt.Equals, 0)

	l.Latch(EdgeRising)
	c.Assert(l.Pending(), qt.Equals, EdgeRising)
	l.Service(&rec)
	c.Assert(rec.got, qt.DeepEquals, []EdgeFlags{EdgeRising})
	c.Assert(settled, qt.Equals, 1)
	c.Assert(l.Pending(), qt.Equals, EdgeFlags(0))
}

func TestEdgeLatchClear(t *testing.T) {
	c := qt.New(t)

	var (
		l   EdgeLatch
		rec edgeRecorder
	)
	l.Settle = func() {}
	l.Latch(EdgeFalling)
	l.Clear()
	c.Assert(l.Pending(), qt.Equals, EdgeFlags(0))
	l.Service(&rec)
	c.Assert(rec.got, qt.HasLen, 0)
}

func TestEdgeLatchBoth(t *testing.T) {
	c := qt.New(t)

	var (
		l   EdgeLatch
		rec edgeRecorder
	)
	l.Settle = func() {}
	l.Latch(EdgeRising)
	l.Latch(EdgeFalling)
	l.Service(&rec)
	c.Assert(rec.got, qt.DeepEquals, []EdgeFlags{EdgeBoth})
}

func TestMultiEdgeHandler(t *testing.T) {
	c := qt.New(t)

	var (
		a, b  edgeRecorder
		calls []string
	)
	h := MultiEdgeHandler(
		&a,
		EdgeHandlerFunc(func(e EdgeFlags) { calls = append(calls, "func "+e.String()) }),
		&b,
	)
	h.HandleEdges(EdgeFalling)
	h.HandleEdges(EdgeBoth)

	c.Assert(a.got, qt.DeepEquals, []EdgeFlags{EdgeFalling, EdgeBoth})
	c.Assert(b.got, qt.DeepEquals, a.got)
	c.Assert(calls, qt.DeepEquals, []string{"func falling", "func both"})
}

func TestEdgeFlagsString(t *testing.T) {
	c := qt.New(t)
	c.Assert(EdgeFlags(0).String(), qt.Equals, "none")
	c.Assert(EdgeRising.String(), qt.Equals, "rising")
	c.Assert(EdgeFlags(4).String(), qt.Equals, "invalid")
}

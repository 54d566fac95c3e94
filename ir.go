package irservo

import "time"

const (
	// Freq38Khz is the carrier used by NEC remotes.
	Freq38Khz = 38000

	// DefaultSettle is how long an edge interrupt waits before clearing its
	// latch, so contact-bounce style re-triggers are swallowed.
	DefaultSettle = 100 * time.Microsecond
)

// TimePair encodes two durations: a carrier-on (mark) time followed by a
// carrier-off (space) time.
type TimePair [2]time.Duration

// FrameMarshaller defines an interface for marshalling data to slice of TimePairs
type FrameMarshaller interface {
	MarshalFrame() []TimePair
}

// EdgeFlags is the set of edge directions latched by the receiver since the
// last time the latch was serviced.
type EdgeFlags uint8

const (
	EdgeRising EdgeFlags = 1 << iota
	EdgeFalling

	EdgeBoth = EdgeRising | EdgeFalling
)

func (e EdgeFlags) String() string {
	switch e {
	case 0:
		return "none"
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	}
	return "invalid"
}

// EdgeHandler consumes latched edges. It is called from interrupt context:
// it must not block and should return quickly.
type EdgeHandler interface {
	HandleEdges(EdgeFlags)
}

// EdgeHandlerFunc adapts a function to EdgeHandler.
type EdgeHandlerFunc func(EdgeFlags)

func (f EdgeHandlerFunc) HandleEdges(e EdgeFlags) { f(e) }

type multiEdgeHandler []EdgeHandler

func (m multiEdgeHandler) HandleEdges(e EdgeFlags) {
	for i := range m {
		m[i].HandleEdges(e)
	}
}

// MultiEdgeHandler returns an EdgeHandler that forwards every call to each
// of hs in order. It is handy for hanging a tracer next to the decoder:
//
//	rx := irservo.NewRxDevice(rise, fall, irservo.MultiEdgeHandler(tracer, decoder))
func MultiEdgeHandler(hs ...EdgeHandler) EdgeHandler {
	return multiEdgeHandler(hs)
}

// Logger is the logging surface used by the controller packages.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

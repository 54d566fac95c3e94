// Command irservo-sim runs the controller on a virtual board and replays
// NEC frames into it.
//
// Usage:
//
//	irservo-sim [-codes 20DF00FF,20DF807F] [-gap 40ms] [-policy restart] [-trace] [-logtostderr -v 2]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/controller"
	"github.com/sparques/irservo/dispatch"
	"github.com/sparques/irservo/nec"
	"github.com/sparques/irservo/sim"
)

var (
	codesFlag  = flag.String("codes", "20DF00FF,20DF807F,20DF40BF,20DFC03F", "comma separated codes to send, in hex")
	gapFlag    = flag.Duration("gap", 40*time.Millisecond, "silence after each frame")
	policyFlag = flag.String("policy", nec.ResyncRestart.String(), "resync policy for a header seen mid-frame (restart, none)")
	traceFlag  = flag.Bool("trace", false, "log every serviced edge at -v 2")
)

type simConfig struct {
	Codes  []uint32
	Gap    time.Duration
	Policy nec.Policy
	Trace  bool
}

type glogger struct{}

func (glogger) Printf(format string, args ...any) { glog.InfoDepth(1, fmt.Sprintf(format, args...)) }

func main() {
	flag.Parse()
	defer glog.Flush()

	codes, err := parseCodes(*codesFlag)
	if err != nil {
		glog.Exitf("irservo-sim: %v", err)
	}
	policy, err := nec.ParsePolicy(*policyFlag)
	if err != nil {
		glog.Exitf("irservo-sim: %v", err)
	}

	err = run(context.Background(), simConfig{
		Codes:  codes,
		Gap:    *gapFlag,
		Policy: policy,
		Trace:  *traceFlag,
	}, os.Stdout)
	if err != nil {
		glog.Exitf("irservo-sim: %+v", err)
	}
}

func parseCodes(s string) ([]uint32, error) {
	var codes []uint32
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		f = strings.TrimPrefix(strings.ToLower(f), "0x")
		v, err := strconv.ParseUint(f, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid code %q: %w", f, err)
		}
		codes = append(codes, uint32(v))
	}
	if len(codes) == 0 {
		return nil, errors.New("no codes to send")
	}
	return codes, nil
}

func run(ctx context.Context, cfg simConfig, w io.Writer) error {
	var (
		board   = sim.NewBoard()
		results = make(chan dispatch.Result, 1)
	)

	ctl, err := controller.New(controller.Hardware{
		Timer:      board,
		TimeBase:   board.TimeBase(),
		LED:        board.LED(),
		BlinkSleep: board.Delay,
		DwellSleep: board.Sleep,
	}, controller.Config{
		Policy:  cfg.Policy,
		Logger:  glogger{},
		Observe: func(r dispatch.Result) { results <- r },
	})
	if err != nil {
		return fmt.Errorf("could not assemble controller: %w", err)
	}

	var h irservo.EdgeHandler = ctl
	if cfg.Trace {
		tb := board.TimeBase()
		h = irservo.MultiEdgeHandler(irservo.EdgeHandlerFunc(func(e irservo.EdgeFlags) {
			glog.V(2).Infof("edge %v ticks=%d", e, tb.Ticks())
		}), ctl)
	}
	board.Attach(h)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		err := ctl.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		defer cancel()
		for _, code := range cfg.Codes {
			before := ctl.Decoder.Stats().Frames
			board.Send(cfg.Gap, nec.Frame{Code: code})
			if ctl.Decoder.Stats().Frames == before {
				fmt.Fprintf(w, "%v %#08x: not decoded\n", board.Now(), code)
				continue
			}
			select {
			case r := <-results:
				fmt.Fprintf(w, "%v %v\n", board.Now(), r)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	st := ctl.Decoder.Stats()
	fmt.Fprintf(w, "frames=%d overruns=%d faults=%d header-errors=%d aborts=%d dropped=%d moves=%d led=%v\n",
		st.Frames, st.Overruns, st.Faults, st.HeaderErrors, st.Aborts, st.Dropped,
		ctl.Servo.Moves(), ctl.Indicator.State(),
	)
	return nil
}

// SPDX-License-Identifier: MIT
package dsp

import (
	"sync"

	applog "voicebird/internal/log"
)

// Request carries one estimation call: a sample window plus the search
// parameters chosen by the coordinator. Samples are copied before
// submission; the gateway never retains the caller's slice.
type Request struct {
	Samples    []float64
	SampleRate int
	MinFreq    float64
	MaxFreq    float64
	Threshold  float64
}

// Result is the outcome of one estimation call. A failed call reports
// Frequency = Undetected with Err set; the pipeline treats it as a
// silent window, never as fatal.
type Result struct {
	Frequency float64
	RMS       float64
	Err       error
}

type call struct {
	req   Request
	reply chan Result
}

// Gateway is the asynchronous boundary in front of an Estimator. All
// calls are funneled through a single worker goroutine, so the
// underlying estimator is never re-entered concurrently and results
// resolve strictly in submission order.
type Gateway struct {
	est      Estimator
	calls    chan call
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewGateway starts the worker and returns the gateway. Close must be
// called to release it.
func NewGateway(est Estimator) *Gateway {
	g := &Gateway{
		est:   est,
		calls: make(chan call, 1),
	}
	g.wg.Add(1)
	go g.run()
	return g
}

// Estimate submits one window and returns a channel that resolves with
// exactly one Result. The send blocks until the worker accepts the
// call; the coordinator guarantees at most one call is in flight, so
// this never blocks in practice.
func (g *Gateway) Estimate(req Request) <-chan Result {
	reply := make(chan Result, 1)
	g.calls <- call{req: req, reply: reply}
	return reply
}

// Close stops the worker after the in-flight call, if any, resolves.
func (g *Gateway) Close() {
	g.stopOnce.Do(func() {
		close(g.calls)
	})
	g.wg.Wait()
}

func (g *Gateway) run() {
	defer g.wg.Done()
	for c := range g.calls {
		var res Result

		freq, err := g.est.Pitch(c.req.Samples, c.req.SampleRate, c.req.MinFreq, c.req.MaxFreq, c.req.Threshold)
		if err != nil {
			applog.Debugf("gateway: pitch estimation failed: %v", err)
			res.Frequency = Undetected
			res.Err = err
		} else {
			res.Frequency = freq
		}

		rms, err := g.est.RMS(c.req.Samples)
		if err != nil {
			applog.Debugf("gateway: rms estimation failed: %v", err)
			if res.Err == nil {
				res.Err = err
			}
		} else {
			res.RMS = rms
		}

		c.reply <- res
	}
}

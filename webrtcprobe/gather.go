package webrtcprobe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultSTUNServer = "stun:stun.l.google.com:19302"
)

// GatherOpts configures ICE gathering.
type GatherOpts struct {
	STUNServers []string
	Timeout     time.Duration
}

type candidateCollector struct {
	mutex      sync.Mutex
	candidates []string
}

func (c *candidateCollector) add(candidate *webrtc.ICECandidate) {
	// nil means that gathering is finished
	if candidate == nil {
		return
	}

	c.mutex.Lock()
	c.candidates = append(c.candidates, candidate.ToJSON().Candidate)
	c.mutex.Unlock()
}

func (c *candidateCollector) collected() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	rv := make([]string, len(c.candidates))
	copy(rv, c.candidates)

	return rv
}

// Gather creates a peer connection with a data channel, sets a local
// offer and collects ICE candidates until gathering is completed or
// timeout is reached. It returns public IPv4 addresses only.
//
// Gather never waits longer than timeout. If time is up, whatever was
// collected so far is returned.
func Gather(ctx context.Context, opts GatherOpts) ([]string, error) {
	stunServers := opts.STUNServers
	if len(stunServers) == 0 {
		stunServers = []string{DefaultSTUNServer}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	peerConnection, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: stunServers},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create peer connection: %w", err)
	}

	defer peerConnection.Close() // nolint: errcheck

	collector := &candidateCollector{}

	peerConnection.OnICECandidate(collector.add)

	if _, err := peerConnection.CreateDataChannel("probe", nil); err != nil {
		return nil, fmt.Errorf("cannot create data channel: %w", err)
	}

	offer, err := peerConnection.CreateOffer(nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create offer: %w", err)
	}

	gatheringComplete := webrtc.GatheringCompletePromise(peerConnection)

	if err := peerConnection.SetLocalDescription(offer); err != nil {
		return nil, fmt.Errorf("cannot set local description: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-gatheringComplete:
	case <-timer.C:
	case <-ctx.Done():
	}

	return FilterCandidates(collector.collected()), nil
}

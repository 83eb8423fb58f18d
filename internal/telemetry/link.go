package telemetry

import (
	"context"
	"net"
	"net/http"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"github.com/syncromatics/go-kit/v2/log"
	"golang.org/x/sync/errgroup"
)

// LinkManager verifies the network association every transmission depends
// on. Association itself belongs to the host's supplicant; the manager
// observes interface state, optionally nudges an external association
// command when the link is down, and polls bounded by a timeout.
type LinkManager struct {
	iface            string
	timeout          time.Duration
	pollInterval     time.Duration
	associateCommand string
	probeURLs        []string
	client           *http.Client

	linkUp func(name string) (bool, error)
}

func NewLinkManager(iface string, timeout time.Duration, associateCommand string, probeURLs []string) *LinkManager {
	return &LinkManager{
		iface:            iface,
		timeout:          timeout,
		pollInterval:     1 * time.Second,
		associateCommand: associateCommand,
		probeURLs:        probeURLs,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		linkUp: interfaceHasAddress,
	}
}

func interfaceHasAddress(name string) (bool, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return false, err
	}
	if ifi.Flags&net.FlagUp == 0 {
		return false, nil
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return false, err
	}
	return len(addrs) > 0, nil
}

// EnsureConnected returns immediately when the link is already associated,
// otherwise initiates association and polls until associated or the
// timeout elapses. Idempotent.
func (l *LinkManager) EnsureConnected(ctx context.Context) error {
	up, err := l.linkUp(l.iface)
	if err == nil && up {
		return nil
	}

	if l.associateCommand != "" {
		log.Info("link down; invoking association command",
			"iface", l.iface)
		out, err := exec.CommandContext(ctx, "sh", "-c", l.associateCommand).CombinedOutput()
		if err != nil {
			log.Warn("association command failed",
				"err", err,
				"output", string(out))
		}
	}

	deadline := time.Now().Add(l.timeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollInterval):
		}

		up, err := l.linkUp(l.iface)
		if err == nil && up {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.Errorf("failed to associate %s within %v", l.iface, l.timeout)
		}
	}
}

// SelfTest fetches a small set of known-good endpoints concurrently. It is
// a startup diagnostic, not a precondition for sending; the caller logs a
// failure and proceeds.
func (l *LinkManager) SelfTest(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, probeURL := range l.probeURLs {
		probeURL := probeURL
		group.Go(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
			if err != nil {
				return errors.Wrapf(err, "failed to build probe for %s", probeURL)
			}

			resp, err := l.client.Do(req)
			if err != nil {
				return errors.Wrapf(err, "failed to reach %s", probeURL)
			}
			resp.Body.Close()
			return nil
		})
	}
	return group.Wait()
}

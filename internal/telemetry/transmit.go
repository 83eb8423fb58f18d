package telemetry

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/syncromatics/go-kit/v2/log"
)

// Transmitter delivers readings to the first responsive endpoint in a
// fixed, ordered fallback list (typically a primary HTTPS URL, an HTTP
// fallback, and a direct-IP HTTPS fallback that bypasses DNS).
type Transmitter struct {
	endpoints []string
	client    *http.Client
}

// NewTransmitter creates a transmitter with a per-request timeout.
// Verification is optional because the direct-IP fallback cannot present
// a name-matched certificate.
func NewTransmitter(endpoints []string, timeout time.Duration, verifyTLS bool) *Transmitter {
	client := &http.Client{
		Timeout: timeout,
	}
	if !verifyTLS {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Transmitter{
		endpoints: endpoints,
		client:    client,
	}
}

// Send POSTs the document to each endpoint in order until one accepts it.
// A transport error or a non-2xx status moves on to the next endpoint; an
// endpoint is never retried within one send event. Exhausting the list
// fails the send event.
func (t *Transmitter) Send(ctx context.Context, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode document")
	}

	for attempt, endpoint := range t.endpoints {
		err := t.post(ctx, endpoint, body)
		if err == nil {
			if attempt > 0 {
				log.Info("delivered using fallback endpoint",
					"endpoint", endpoint,
					"attempt", attempt)
			}
			return nil
		}

		log.Warn("failed to deliver to endpoint",
			"endpoint", endpoint,
			"err", err)
	}

	return errors.Errorf("failed to deliver to all %d endpoints", len(t.endpoints))
}

func (t *Transmitter) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

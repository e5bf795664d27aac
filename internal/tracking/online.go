package tracking

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// payload is the body posted to the endpoint in ModeOnline.
type payload struct {
	Project string `json:"project"`
	RunID   string `json:"run_id"`
	jsonRecord
}

func (r *Run) post(rec Record) error {
	body, err := json.Marshal(payload{Project: r.cfg.Project, RunID: r.cfg.RunID, jsonRecord: rec.encoded()})
	if err != nil {
		return errors.Wrap(err, "encode record")
	}

	resp, err := r.client.Post(r.cfg.Endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		r.logger.Warn("posting metrics failed", "endpoint", r.cfg.Endpoint, "step", rec.Step, "err", err)
		return errors.Wrapf(err, "post step %d", rec.Step)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		r.logger.Warn("endpoint rejected metrics", "endpoint", r.cfg.Endpoint, "status", resp.Status)
		return errors.Errorf("post step %d: endpoint returned %s", rec.Step, resp.Status)
	}
	return nil
}

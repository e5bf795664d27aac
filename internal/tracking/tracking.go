// Package tracking records training runs: a configuration snapshot, a
// metric log, a summary of the latest values and model checkpoints.
//
// A run lives in <Dir>/<Project>/<RunID>:
//
//	config.yaml        tracker settings and the caller's configuration snapshot
//	metrics.jsonl      one JSON record per Log call
//	metrics.db         the same records in SQLite, read back with OpenStore
//	model.yaml         parameter names and shapes, written by Watch
//	model.safetensors  checkpoint written by Save
//	summary.yaml       last value of every metric, written by Close
//
// The mode is explicit configuration. ModeOnline additionally posts every
// record to an HTTP endpoint and ModeDisabled writes nothing at all.
package tracking

import (
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pyworld-ml/pyworld/internal/serialization"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// ErrClosed is returned by every Run method after Close.
var ErrClosed = errors.New("tracking: run is closed")

// ErrNoModel is returned by Save when neither an argument nor a watched model is available.
var ErrNoModel = errors.New("tracking: no model to save")

// Config configures a Run.
type Config struct {
	Project   string `yaml:"project"`
	RunID     string `yaml:"run_id,omitempty"`
	Dir       string `yaml:"dir"`
	Mode      Mode   `yaml:"mode"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Save      bool   `yaml:"save"`
	Overwrite bool   `yaml:"overwrite"`
}

// Model is anything whose parameters can be listed by name.
type Model interface {
	StateDict() map[string]*tensor.RawTensor
}

// Record is one line of metrics.jsonl. NaN and infinite values are
// written as null and read back as NaN.
type Record struct {
	Step   int
	Time   time.Time
	Values map[string]float64
}

type jsonRecord struct {
	Step   int                 `json:"step"`
	Time   time.Time           `json:"time"`
	Values map[string]*float64 `json:"values"`
}

func (r Record) encoded() jsonRecord {
	values := make(map[string]*float64, len(r.Values))
	for key, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[key] = nil
			continue
		}
		values[key] = &v
	}
	return jsonRecord{Step: r.Step, Time: r.Time, Values: values}
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.encoded())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Step, r.Time = raw.Step, raw.Time
	r.Values = make(map[string]float64, len(raw.Values))
	for key, v := range raw.Values {
		if v == nil {
			r.Values[key] = math.NaN()
			continue
		}
		r.Values[key] = *v
	}
	return nil
}

// Option configures New.
type Option func(*runOptions)

type runOptions struct {
	logger   *slog.Logger
	client   *http.Client
	now      func() time.Time
	snapshot any
}

// WithLogger sets the logger for run events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// WithHTTPClient sets the client used in ModeOnline.
func WithHTTPClient(client *http.Client) Option {
	return func(o *runOptions) {
		o.client = client
	}
}

// WithClock overrides time.Now for run ids and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *runOptions) {
		o.now = now
	}
}

// WithSnapshot stores v under "config" in config.yaml.
func WithSnapshot(v any) Option {
	return func(o *runOptions) {
		o.snapshot = v
	}
}

// Run is an open experiment run. It is not safe for concurrent use.
type Run struct {
	cfg     Config
	dir     string
	logger  *slog.Logger
	client  *http.Client
	now     func() time.Time
	metrics *os.File
	enc     *json.Encoder
	store   *Store
	model   Model
	summary map[string]float64
	closed  bool
}

// NewRunID returns a sortable unique run id: a UTC timestamp and a short uuid.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

// New opens a run described by cfg.
func New(cfg Config, opts ...Option) (*Run, error) {
	options := runOptions{
		logger: slog.Default(),
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	r := &Run{
		cfg:     cfg,
		logger:  options.logger,
		client:  options.client,
		now:     options.now,
		summary: make(map[string]float64),
	}
	if cfg.Mode == ModeDisabled {
		r.logger.Debug("tracking disabled")
		return r, nil
	}
	if cfg.Mode == ModeOnline && cfg.Endpoint == "" {
		return nil, errors.New("tracking: online mode requires an endpoint")
	}

	if r.cfg.Project == "" {
		r.cfg.Project = "default"
	}
	if r.cfg.Dir == "" {
		r.cfg.Dir = "runs"
	}
	if r.cfg.RunID == "" {
		r.cfg.RunID = NewRunID(r.now())
	}
	r.dir = filepath.Join(r.cfg.Dir, r.cfg.Project, r.cfg.RunID)
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create run directory %s", r.dir)
	}

	snapshot := struct {
		Tracker Config `yaml:"tracker"`
		Config  any    `yaml:"config,omitempty"`
	}{r.cfg, options.snapshot}
	if err := r.writeYAML("config.yaml", snapshot); err != nil {
		return nil, err
	}

	path := filepath.Join(r.dir, "metrics.jsonl")
	//nolint:gosec // G304: path is inside the run directory.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	r.metrics = f
	r.enc = json.NewEncoder(f)

	if r.store, err = OpenStore(r.dir); err != nil {
		_ = f.Close()
		return nil, err
	}

	r.logger.Info("tracking run started",
		"project", r.cfg.Project, "run_id", r.cfg.RunID, "mode", r.cfg.Mode, "dir", r.dir)
	return r, nil
}

// Dir returns the run directory, or "" when disabled.
func (r *Run) Dir() string {
	return r.dir
}

// Config returns the effective configuration, defaults filled in.
func (r *Run) Config() Config {
	return r.cfg
}

// Summary returns the last logged value of every metric.
func (r *Run) Summary() map[string]float64 {
	return maps.Clone(r.summary)
}

// History returns the values logged for key so far.
func (r *Run) History(key string) ([]Point, error) {
	if r.cfg.Mode == ModeDisabled {
		return nil, nil
	}
	if r.closed {
		return nil, ErrClosed
	}
	return r.store.History(key)
}

// Log appends one record for step.
//
// In ModeOnline the record is also posted to the endpoint. A failed post is
// returned after the record has been written locally.
func (r *Run) Log(step int, values map[string]float64) error {
	if r.cfg.Mode == ModeDisabled {
		return nil
	}
	if r.closed {
		return ErrClosed
	}

	rec := Record{Step: step, Time: r.now().UTC(), Values: values}
	if err := r.enc.Encode(rec); err != nil {
		return errors.Wrapf(err, "write metrics for step %d", step)
	}
	if err := r.store.Insert(rec); err != nil {
		return errors.Wrapf(err, "store metrics for step %d", step)
	}
	maps.Copy(r.summary, values)

	if r.cfg.Mode == ModeOnline {
		return r.post(rec)
	}
	return nil
}

// Watch records the parameter names and shapes of model in model.yaml and
// remembers it for Save and Close.
func (r *Run) Watch(model Model) error {
	if r.cfg.Mode == ModeDisabled {
		return nil
	}
	if r.closed {
		return ErrClosed
	}
	r.model = model

	state := model.StateDict()
	shapes := make(map[string][]int, len(state))
	count := 0
	for name, raw := range state {
		shapes[name] = raw.Shape()
		count += raw.NumElements()
	}
	desc := struct {
		Parameters int              `yaml:"parameters"`
		Tensors    map[string][]int `yaml:"tensors"`
	}{count, shapes}
	if err := r.writeYAML("model.yaml", desc); err != nil {
		return err
	}

	r.logger.Info("watching model", "tensors", len(shapes), "parameters", count)
	return nil
}

// Save writes a checkpoint of model, or of the watched model when model is
// nil, and returns its path.
//
// With Overwrite unset an existing checkpoint is kept and the new one is
// numbered: model-1.safetensors, model-2.safetensors and so on.
func (r *Run) Save(model Model) (string, error) {
	if r.cfg.Mode == ModeDisabled {
		return "", nil
	}
	if r.closed {
		return "", ErrClosed
	}
	if model == nil {
		model = r.model
	}
	if model == nil {
		return "", ErrNoModel
	}

	path := r.checkpointPath()
	meta := map[string]string{
		"project": r.cfg.Project,
		"run_id":  r.cfg.RunID,
	}
	if err := serialization.WriteSafeTensors(path, model.StateDict(), meta); err != nil {
		return "", errors.Wrapf(err, "save model to %s", path)
	}

	r.logger.Info("model saved", "path", path)
	return path, nil
}

// Close writes summary.yaml, saves the watched model when Config.Save is
// set, and closes the metric log. Close is idempotent.
func (r *Run) Close() error {
	if r.cfg.Mode == ModeDisabled || r.closed {
		return nil
	}

	var firstErr error
	if r.cfg.Save && r.model != nil {
		if _, err := r.Save(nil); err != nil {
			firstErr = err
		}
	}
	if err := r.writeYAML("summary.yaml", r.summary); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := r.metrics.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "close metrics log")
	}
	if err := r.store.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "close metrics store")
	}
	r.closed = true

	r.logger.Info("tracking run finished", "run_id", r.cfg.RunID)
	return firstErr
}

func (r *Run) checkpointPath() string {
	path := filepath.Join(r.dir, "model.safetensors")
	if r.cfg.Overwrite {
		return path
	}
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = filepath.Join(r.dir, "model-"+strconv.Itoa(i)+".safetensors")
	}
}

func (r *Run) writeYAML(name string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

package simulator

import (
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mobile-access/readers-go/pkg/sdk"
)

// Step types.
const (
	StepStates = "states"
	StepReader = "reader"
	StepLost   = "lost"
	StepAccess = "access"
)

//go:embed scenarios/*.yaml
var builtin embed.FS

// Scenario is a scripted sequence of SDK events.
type Scenario struct {
	// Name identifies the scenario in logs.
	Name string `yaml:"name"`

	// Scanning and InitialStates are applied before the first step.
	Scanning      bool     `yaml:"scanning"`
	InitialStates []string `yaml:"initialStates"`

	// Loop restarts the steps after the last one.
	Loop bool `yaml:"loop"`

	Steps []Step `yaml:"steps"`
}

// Step is one scripted event.
type Step struct {
	// After is the delay before this step, relative to the previous one.
	After Duration `yaml:"after"`

	// Type is one of states, reader, lost, access.
	Type string `yaml:"type"`

	// States and Scanning apply to "states" steps.
	States   []string `yaml:"states,omitempty"`
	Scanning *bool    `yaml:"scanning,omitempty"`

	// Reader applies to "reader" steps.
	Reader *ReaderSpec `yaml:"reader,omitempty"`

	// ID names the reader for "lost" and "access" steps.
	ID string `yaml:"id,omitempty"`

	// Event and Message apply to "access" steps.
	Event   string `yaml:"event,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// ReaderSpec describes a reader in a scenario file.
type ReaderSpec struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Distance   *float64       `yaml:"distance,omitempty"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// Reader converts the spec to an SDK reader.
func (r ReaderSpec) Reader() sdk.Reader {
	return sdk.Reader{ID: r.ID, Name: r.Name, Distance: r.Distance, Attributes: r.Attributes}.Clone()
}

// Duration is a time.Duration written as "500ms" or "2s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadError describes a scenario that could not be loaded.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// ParseScenario parses and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := sc.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid scenario", Cause: err}
	}
	return &sc, nil
}

// LoadScenario reads a scenario file. Names without a path that match a
// built-in scenario (e.g. "lobby") load the embedded copy.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		embedded, embErr := builtin.ReadFile("scenarios/" + path + ".yaml")
		if embErr != nil {
			return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
		}
		data = embedded
	}

	sc, err := ParseScenario(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
		}
		return nil, err
	}
	return sc, nil
}

// Builtin returns the names of the embedded scenarios.
func Builtin() []string {
	entries, _ := builtin.ReadDir("scenarios")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		names = append(names, name[:len(name)-len(".yaml")])
	}
	return names
}

// Validate checks every step has the fields its type needs.
func (sc *Scenario) Validate() error {
	if sc.Loop && len(sc.Steps) > 0 {
		var total time.Duration
		for _, st := range sc.Steps {
			total += time.Duration(st.After)
		}
		if total == 0 {
			return fmt.Errorf("looping scenario needs at least one non-zero delay")
		}
	}

	for i, st := range sc.Steps {
		switch st.Type {
		case StepStates:
		case StepReader:
			if st.Reader == nil || st.Reader.ID == "" {
				return fmt.Errorf("step %d: reader step needs reader.id", i+1)
			}
		case StepLost:
			if st.ID == "" {
				return fmt.Errorf("step %d: lost step needs id", i+1)
			}
		case StepAccess:
			if st.ID == "" || st.Event == "" {
				return fmt.Errorf("step %d: access step needs id and event", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown type %q", i+1, st.Type)
		}
	}
	return nil
}

// Run applies the initial states, then plays the steps in order. It
// returns nil when a non-looping scenario finishes, or ctx.Err() when
// cancelled.
func (s *Simulator) Run(ctx context.Context, sc *Scenario) error {
	s.SetStates(sc.Scanning, sc.InitialStates...)
	s.debugLog("scenario started", "name", sc.Name, "steps", len(sc.Steps), "loop", sc.Loop)

	for {
		for _, st := range sc.Steps {
			if err := wait(ctx, time.Duration(st.After)); err != nil {
				return err
			}
			s.apply(st)
		}
		if !sc.Loop || len(sc.Steps) == 0 {
			return nil
		}
	}
}

func (s *Simulator) apply(st Step) {
	switch st.Type {
	case StepStates:
		scanning := s.Scanning()
		if st.Scanning != nil {
			scanning = *st.Scanning
		}
		s.SetStates(scanning, st.States...)
	case StepReader:
		s.SeeReader(st.Reader.Reader())
	case StepLost:
		s.LoseReader(st.ID)
	case StepAccess:
		s.Access(st.Event, st.Message, st.ID)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

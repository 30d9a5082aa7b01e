package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// document is the structure shared by the JSON and YAML formatters.
type document struct {
	Summary Summary `json:"summary" yaml:"summary"`
	Result  `yaml:",inline"`
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(document{Summary: r.Summary(), Result: *r})
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)

// jsonlRecord is one line of JSONL output.
type jsonlRecord struct {
	Action string `json:"action"`
	types.FileMove
}

// JSONLFormatter writes one compact JSON object per rename or move,
// for streaming into tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	if r.Rename != nil {
		for _, m := range r.Rename.Moves() {
			if err := encoder.Encode(jsonlRecord{Action: "rename", FileMove: m}); err != nil {
				return err
			}
		}
	}
	if r.Import != nil {
		for _, m := range r.Import.Moves() {
			if err := encoder.Encode(jsonlRecord{Action: "move", FileMove: m}); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

var _ Formatter = (*JSONLFormatter)(nil)

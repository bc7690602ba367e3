package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
)

// ErrNoData is returned for an envelope without a data field.
var ErrNoData = errors.New("message has no data")

// Message is the {opts, data} envelope. Exactly one of Records and Tree is
// set.
type Message struct {
	Opts    OptionsPatch
	Records []report.FlatRecord
	Tree    *treemap.Input
}

type envelope struct {
	Opts *OptionsPatch   `json:"opts"`
	Data json.RawMessage `json:"data"`
}

// DecodeMessage parses an envelope. An array in data is a list of flat
// records to be grouped; an object is a pre-grouped {key, values} tree.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}

	var m Message
	if env.Opts != nil {
		m.Opts = *env.Opts
	}

	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Message{}, ErrNoData
	}
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &m.Records); err != nil {
			return Message{}, fmt.Errorf("failed to parse message records: %w", err)
		}
		if m.Records == nil {
			m.Records = []report.FlatRecord{}
		}
	case '{':
		var in treemap.Input
		if err := json.Unmarshal(raw, &in); err != nil {
			return Message{}, fmt.Errorf("failed to parse message tree: %w", err)
		}
		m.Tree = &in
	default:
		return Message{}, fmt.Errorf("message data must be an array or an object")
	}
	return m, nil
}

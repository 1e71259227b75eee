package commands

import (
	"bytes"
	"encoding/json"
)

func indent(payload json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systmms/akops/internal/akeyless"
)

// Record is one inbound item: an operation name plus its parameters.
type Record struct {
	Operation           string `yaml:"operation" json:"operation"`
	akeyless.Parameters `yaml:",inline"`
	AdditionalFields    AdditionalFields `yaml:"additionalFields" json:"additionalFields"`
}

// AdditionalFields holds per-record options that are not operation parameters.
type AdditionalFields struct {
	// Timeout in milliseconds for each Akeyless call of this record.
	Timeout int `yaml:"timeout" json:"timeout"`
}

// CallTimeout returns the record's timeout, or def when unset.
func (r Record) CallTimeout(def time.Duration) time.Duration {
	if r.AdditionalFields.Timeout > 0 {
		return time.Duration(r.AdditionalFields.Timeout) * time.Millisecond
	}
	return def
}

type recordsDocument struct {
	Records []Record `yaml:"records"`
}

// LoadRecordsFile reads a batch document from path.
func LoadRecordsFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch document: %w", err)
	}
	return LoadRecords(data)
}

// LoadRecords parses a YAML or JSON batch document. The document is either a
// list of records or a mapping with a "records" list.
func LoadRecords(data []byte) ([]Record, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse batch document: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch document for validation: %w", err)
	}
	if err := ValidateDocument(jsonData); err != nil {
		return nil, err
	}

	if _, isList := raw.([]interface{}); isList {
		var records []Record
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		return records, nil
	}

	var doc recordsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return doc.Records, nil
}

package store

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// decodeSnapshot reads a stored JSON column into v. Rows written by older
// clients are not always strict JSON, so a failed decode is retried after a
// repair pass and then as Hjson before giving up.
func decodeSnapshot(raw string, v any) error {
	firstErr := json.Unmarshal([]byte(raw), v)
	if firstErr == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(raw); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	var loose any
	if err := hjson.Unmarshal([]byte(raw), &loose); err == nil {
		if canonical, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(canonical, v); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("decode snapshot: %w", firstErr)
}

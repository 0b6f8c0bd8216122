package domain

import (
	"encoding/json"
)

type Payload []byte

func (p Payload) ToExecutionItems() ([]ExecutionItem, error) {
	items := []ExecutionItem{}

	if len(p) == 0 {
		return items, nil
	}

	err := json.Unmarshal(p, &items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (p Payload) ToNodeResults() ([]NodeResult, error) {
	results := []NodeResult{}

	if len(p) == 0 {
		return results, nil
	}

	err := json.Unmarshal(p, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// NewPayload encodes items as a single input payload.
func NewPayload(items []ExecutionItem) (Payload, error) {
	if items == nil {
		items = []ExecutionItem{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

package submission

import (
	"bytes"
	"encoding/json"
)

// Proposed is a respondent's raw answer to one question, before validation.
// Clients send a bare string for text questions, {"choices": [...]} for
// multiple choice and {"choice": id} for single choice.
type Proposed struct {
	Text    *string
	Choices []int64
	Choice  *int64
}

type proposedObject struct {
	Text    *string `json:"text,omitempty"`
	Choices []int64 `json:"choices,omitempty"`
	Choice  *int64  `json:"choice,omitempty"`
}

func TextAnswer(s string) Proposed {
	return Proposed{Text: &s}
}

func ChoiceAnswer(id int64) Proposed {
	return Proposed{Choice: &id}
}

func ChoicesAnswer(ids ...int64) Proposed {
	if ids == nil {
		ids = []int64{}
	}
	return Proposed{Choices: ids}
}

func (p *Proposed) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Proposed{Text: &s}
		return nil
	}

	var obj proposedObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Proposed(obj)
	return nil
}

func (p Proposed) MarshalJSON() ([]byte, error) {
	if p.Text != nil && p.Choices == nil && p.Choice == nil {
		return json.Marshal(*p.Text)
	}
	return json.Marshal(proposedObject(p))
}

// selected returns the supplied choice ids, Choice first, without duplicates.
func (p Proposed) selected() []int64 {
	ids := make([]int64, 0, len(p.Choices)+1)
	seen := make(map[int64]bool, len(p.Choices)+1)
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if p.Choice != nil {
		add(*p.Choice)
	}
	for _, id := range p.Choices {
		add(id)
	}
	return ids
}

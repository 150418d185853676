package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type surveyFile struct {
	Surveys []Survey `json:"surveys" yaml:"surveys"`
}

// LoadSurveys reads survey definitions from a YAML file, or a JSON file when
// the extension is .json. Unknown fields are rejected, and every survey must
// pass Validate.
func LoadSurveys(path string) ([]Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read surveys: %w", err)
	}

	var doc surveyFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = parseJSON(data, &doc)
	} else {
		err = parseYAML(data, &doc)
	}
	if err != nil {
		return nil, err
	}

	for i, s := range doc.Surveys {
		if err := Validate(s); err != nil {
			return nil, fmt.Errorf("survey %d (%q): %w", i+1, s.Title, err)
		}
	}
	return doc.Surveys, nil
}

func parseYAML(data []byte, doc *surveyFile) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func parseJSON(data []byte, doc *surveyFile) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("parse json: multiple documents are not supported")
		}
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
	"github.com/we-are-mono/adsbfeed/types"
)

var outputValidate = validator.New()

// LoadOutputs reads the web layer's outputs.json. A missing file is an empty document.
// Comments and trailing commas are tolerated.
func LoadOutputs(path string) (*types.OutputsDocument, error) {
	doc := &types.OutputsDocument{Version: "1.0"}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read outputs: %w", err)
	}

	if err := UnmarshalJSON(jsonc.ToJSON(data), doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return doc, nil
}

// EnabledOutputs returns enabled, non-primary outputs that pass validation,
// in document order, plus one error per rejected entry.
func EnabledOutputs(doc *types.OutputsDocument) ([]types.Output, []error) {
	if doc == nil {
		return nil, nil
	}

	var valid []types.Output
	var problems []error
	for _, out := range doc.Outputs {
		if !out.Enabled || out.Primary {
			continue
		}
		if err := outputValidate.Struct(out); err != nil {
			problems = append(problems, fmt.Errorf("output %q: %w", out.ID, err))
			continue
		}
		valid = append(valid, out)
	}

	return valid, problems
}

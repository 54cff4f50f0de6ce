/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package clinicalschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// reflector turns result structs into inline JSON schemas: no $id, no $defs, required
// fields taken from the jsonschema tags.
var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
	Anonymous:                  true,
}

// reflectSchema returns the JSON schema for the struct type of v.
func reflectSchema(v any) *jsonschema.Schema {
	return reflector.Reflect(v)
}

// compile turns a reflected schema into a validator. name is only used as the resource
// location inside the compiler.
func compile(name string, s *jsonschema.Schema) (*jsv.Schema, []byte, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling %s schema: %w", name, err)
	}
	parsed, err := jsv.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s schema: %w", name, err)
	}

	url := name + ".json"
	c := jsv.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		return nil, nil, fmt.Errorf("adding %s schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling %s schema: %w", name, err)
	}
	return compiled, doc, nil
}

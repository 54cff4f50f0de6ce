/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package clinicalschema holds the result contracts of the clinical tools and validates
provider output against them.

Each category is a Go struct whose `jsonschema` tags define required fields and enums.
New reflects the struct into a JSON schema, compiles it into a validator, and derives the
Gemini response schema from the same document, so the prompt, the provider constraint and
the check all agree.

# Validation

	res := clinicalschema.Default().Validate(clinicalschema.GuidelineAdherenceCategory, raw)
	if !res.OK() {
		// res.Error() names the missing field or the bad enum value.
	}

Validation accepts output wrapped in a markdown fence, requires a JSON object, and checks
required fields, primitive types, enumerations, and nested required fields of array items.
Fields outside the schema are kept. A successful result carries the decoded object exactly
as the provider produced it.
*/
package clinicalschema

/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleprovider

import (
	"strings"
)

// transientMarkers are substrings of Vertex AI and Gemini API errors worth retrying.
var transientMarkers = []string{
	"Resource exhausted",
	"RESOURCE_EXHAUSTED",
	"429",
	"rate limit",
	"quota exceeded",
	"Overloaded",
	"503",
	"UNAVAILABLE",
	"Internal error",
	"server error",
}

// IsTransient reports whether err is a rate limit, quota or transient server
// error.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

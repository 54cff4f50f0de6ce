/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package taskprompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// expand walks text and replaces every {{name}} placeholder with resolve(name).
func expand(text string, resolve func(name string) (string, error)) (string, error) {
	var sb strings.Builder
	for text != "" {
		start := strings.Index(text, "{{")
		if start < 0 {
			sb.WriteString(text)
			break
		}
		sb.WriteString(text[:start])

		end := strings.Index(text[start:], "}}")
		if end < 0 {
			return "", errors.New("unclosed placeholder: missing '}}'")
		}
		end += start

		name := strings.TrimSpace(text[start+2 : end])
		if !isIdentifier(name) {
			return "", fmt.Errorf("invalid placeholder name %q", name)
		}
		v, err := resolve(name)
		if err != nil {
			return "", err
		}
		sb.WriteString(v)
		text = text[end+2:]
	}
	return sb.String(), nil
}

// isIdentifier reports whether s is a letter followed by letters, digits or underscores.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return s != ""
}

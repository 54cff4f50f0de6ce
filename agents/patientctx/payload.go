/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patientctx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrEmptyPayload is returned by DecodePayload for a blank payload.
var ErrEmptyPayload = errors.New("patient context payload is empty")

// DecodePayload decodes a transport-supplied context payload: a base64 encoded UTF-8 JSON
// object. Both the standard and the URL-safe alphabets are accepted, padded or not.
func DecodePayload(payload string) (*Patient, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	var (
		data []byte
		err  error
	)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err = enc.DecodeString(payload); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, errors.New("decoded payload is not valid UTF-8")
	}
	return Decode(data)
}

// EncodePayload is the inverse of DecodePayload for callers building requests.
func EncodePayload(jsonObject []byte) string {
	return base64.StdEncoding.EncodeToString(jsonObject)
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedReply = errors.New("malformed model reply")

// StructuredReply is the decoded form of the model's raw text output. The
// shape is promised by the system prompt only, so decoding validates it
// strictly: unknown fields, trailing data, or a recognized intent without a
// name are all malformed.
type StructuredReply struct {
	IsIntentRecognized bool           `json:"is_intent_recognized"`
	FriendlyMessage    *string        `json:"friendly_message"`
	Intent             *string        `json:"intent"`
	Params             map[string]any `json:"params"`
}

func decodeReply(raw string) (*StructuredReply, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var reply StructuredReply
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedReply)
	}

	if reply.IsIntentRecognized && (reply.Intent == nil || *reply.Intent == "") {
		return nil, fmt.Errorf("%w: intent recognized but no intent name given", ErrMalformedReply)
	}

	return &reply, nil
}

package host

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request actions.
const (
	ActionClassify = "classify"
	ActionIdentity = "identity"
)

// ErrInvalidRequest is wrapped by requests that do not match the schema.
var ErrInvalidRequest = errors.New("invalid request")

//go:embed request.schema.json
var requestSchemaJSON []byte

var requestSchema = mustSchema(requestSchemaJSON)

func mustSchema(b []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("request schema: %v", err))
	}
	return s
}

// Request is one message read in the request loop.  On the wire it is either
// a JSON string, the URL to classify, or an object:
//
//	{"action": "classify", "url": "example.com/login"}
//	{"action": "identity"}
//
// Without an action, an object carrying a url is a classify request and any
// other object, such as the extension's {"text": "get_username_request"}, is
// an identity request.
type Request struct {
	Action string  `json:"action"`
	URL    *string `json:"url"`
	Text   string  `json:"text"`
}

// ParseRequest validates and decodes a request payload.
func ParseRequest(payload []byte) (Request, error) {
	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Request{}, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(details, "; "))
	}

	var req Request
	if trimmed := bytes.TrimSpace(payload); len(trimmed) > 0 && trimmed[0] == '"' {
		var u string
		if err := json.Unmarshal(trimmed, &u); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		req.URL = &u
	} else if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if req.Action == "" {
		req.Action = ActionClassify
		if req.URL == nil {
			req.Action = ActionIdentity
		}
	}
	return req, nil
}

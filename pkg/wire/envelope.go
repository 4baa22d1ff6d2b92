// Package wire defines the JSON envelopes exchanged between the front end and session workers.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Params holds decoded command parameters. Numbers decode as json.Number so integers and
// doubles stay distinguishable.
type Params map[string]any

// Command is the immutable command envelope.
type Command struct {
	code    CommandCode
	locator map[string]string
	params  Params
}

// NewCommand builds a command envelope, copying the supplied maps.
func NewCommand(code CommandCode, locator map[string]string, params Params) Command {
	cmd := Command{
		code:    code,
		locator: make(map[string]string, len(locator)),
		params:  make(Params, len(params)),
	}
	maps.Copy(cmd.locator, locator)
	maps.Copy(cmd.params, params)
	return cmd
}

// Code returns the command code.
func (c Command) Code() CommandCode { return c.code }

// LocatorParams returns a copy of the URL-derived parameters.
func (c Command) LocatorParams() map[string]string {
	return maps.Clone(c.locator)
}

// Params returns a copy of the body parameters.
func (c Command) Params() Params {
	return maps.Clone(c.params)
}

// Locator returns a single locator parameter.
func (c Command) Locator(name string) string {
	return c.locator[name]
}

type commandJSON struct {
	Command       CommandCode       `json:"command"`
	LocatorParams map[string]string `json:"locatorParams"`
	CommandParams Params            `json:"commandParams"`
}

// MarshalJSON implements json.Marshaler.
func (c Command) MarshalJSON() ([]byte, error) {
	locator := c.locator
	if locator == nil {
		locator = map[string]string{}
	}
	params := c.params
	if params == nil {
		params = Params{}
	}
	return json.Marshal(commandJSON{
		Command:       c.code,
		LocatorParams: locator,
		CommandParams: params,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Command) UnmarshalJSON(data []byte) error {
	var raw commandJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode command envelope: %w", err)
	}
	*c = NewCommand(raw.Command, raw.LocatorParams, raw.CommandParams)
	return nil
}

// DecodeParams decodes a JSON object body into Params, keeping numbers as json.Number.
func DecodeParams(data []byte) (Params, error) {
	params := Params{}
	if len(bytes.TrimSpace(data)) == 0 {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("decode command parameters: %w", err)
	}
	return params, nil
}

// Response is the response envelope. Status 0 is success.
type Response struct {
	Status int `json:"statusCode"`
	Value  any `json:"value"`
}

// OK reports whether the response carries a success status.
func (r Response) OK() bool {
	return r.Status == 0
}

// ErrorValue is the value payload of a failed response.
type ErrorValue struct {
	Message string `json:"message"`
}

// Message returns the error message of a failed response, if any.
func (r Response) Message() string {
	switch v := r.Value.(type) {
	case ErrorValue:
		return v.Message
	case *ErrorValue:
		if v != nil {
			return v.Message
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// ErrorResponse builds a failed response.
func ErrorResponse(status int, message string) Response {
	return Response{Status: status, Value: ErrorValue{Message: message}}
}

package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/odvcencio/webdriverd/pkg/wire"
)

const maxBodyBytesCommand int64 = 8 << 20

// decodeJSONBody decodes the request body into dst, keeping numbers as json.Number. It
// returns the HTTP status to report when decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64, allowEOF bool) (int, error) {
	if r == nil || r.Body == nil {
		if allowEOF {
			return 0, nil
		}
		return http.StatusBadRequest, fmt.Errorf("request body required")
	}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if allowEOF && errors.Is(err, io.EOF) {
			return 0, nil
		}
		return bodyErrorStatus(err, maxBytes)
	}
	return 0, nil
}

// readParams reads the command parameters. An empty body is an empty parameter set.
func readParams(w http.ResponseWriter, r *http.Request, maxBytes int64) (wire.Params, int, error) {
	if r.Body == nil {
		return wire.Params{}, 0, nil
	}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		status, err := bodyErrorStatus(err, maxBytes)
		return nil, status, err
	}
	params, err := wire.DecodeParams(data)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return params, 0, nil
}

func bodyErrorStatus(err error, maxBytes int64) (int, error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, fmt.Errorf("request body too large (max %d bytes)", maxBytes)
	}
	return http.StatusBadRequest, err
}

package geolib

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/qri-io/jsonschema"
)

const verifyLeakMaxBodySize = 64 * 1024

var handleVerifyLeakJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "leaked_ips"
        ],
        "properties": {
            "leaked_ips": {
                "type": "array",
                "minItems": 1,
                "maxItems": 64,
                "items": {
                    "type": "string",
                    "maxLength": 64
                }
            },
            "current_ip": {
                "type": "string",
                "maxLength": 64
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type handleVerifyLeakRequest struct {
	LeakedIPs []string `json:"leaked_ips"`
	CurrentIP string   `json:"current_ip"`
}

func (h httpHandler) handlePostVerifyLeak(w http.ResponseWriter, req *http.Request) {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, req.Body, verifyLeakMaxBodySize))

	req.Body.Close()

	if err != nil {
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return
	}

	if !json.Valid(bodyBytes) {
		h.sendError(w, nil, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	errs, err := handleVerifyLeakJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.sendError(w, err, "Cannot validate body", http.StatusInternalServerError)

		return
	}

	if len(errs) > 0 {
		h.sendError(w, errs[0], "leaked_ips must be a non-empty list of strings", http.StatusBadRequest)

		return
	}

	parsedRequest := &handleVerifyLeakRequest{}
	if err := json.Unmarshal(bodyBytes, parsedRequest); err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	if parsedRequest.CurrentIP == "" {
		if ipAddr := ClientAddress(req); ipAddr != nil {
			parsedRequest.CurrentIP = ipAddr.String()
		}
	}

	h.encodeJSON(w, http.StatusOK,
		h.leaks.Verify(req.Context(), parsedRequest.LeakedIPs, parsedRequest.CurrentIP))
}

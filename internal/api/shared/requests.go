package shared

import (
	"encoding/json"
	"net/http"
)

// DecodeJSON decodes the request body into v. Handlers validate the decoded
// struct themselves, so this does no more than the JSON round trip.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

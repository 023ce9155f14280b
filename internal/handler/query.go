package handler

// Query-parameter validation happens at the edge, before any service call.
// The contract is strict: limit/offset/maxDaysAgo must be digit-strings
// (so "-1", "1.5", "abc", and "" are all rejected, not coerced), and every
// violation is collected so one response reports them all. Unknown query
// parameters are ignored.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/sakif/ecodriven/internal/apperror"
)

var digitString = regexp.MustCompile(`^\d+$`)

// queryInt extracts an optional non-negative integer query parameter.
// Returns the parsed value (0 when absent) and appends a violation message
// to errs when the raw value is not a digit-string.
func queryInt(query url.Values, name string, errs []string) (int, []string) {
	if !query.Has(name) {
		return 0, errs
	}

	raw := query.Get(name)
	if !digitString.MatchString(raw) {
		return 0, append(errs, fmt.Sprintf("%q must be a string of digits", name))
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		// Digit-strings only fail Atoi by overflowing int.
		return 0, append(errs, fmt.Sprintf("%q is too large", name))
	}

	return value, errs
}

// decodeBody decodes a JSON request body strictly: unknown keys are schema
// violations, not silently dropped, and malformed bodies surface as a 400
// with the decoder's message rather than a bare failure.
func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperror.ValidationFailed("request body is invalid: " + err.Error())
	}

	return nil
}

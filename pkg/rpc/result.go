package rpc

import (
	"fmt"
	"log/slog"
)

const resultLogPrefix = "rpc:result"

// maskedValue replaces secret-bearing request fields in error echoes.
const maskedValue = "<masked>"

// maskedFields are the top-level request fields never echoed back verbatim.
var maskedFields = []string{"passphrase", "secret", "seed", "seed_hex"}

// BuildResult runs method through the invoker and shapes the nested result
// object inside outer. On success result carries the handler's fields plus
// status "success". On error result carries status "error" and an echo of
// the request with secret-bearing fields masked; the error triple itself is
// already present, written by the handler or by the wrapper's internal-error
// path.
func (iv *Invoker) BuildResult(c *Context, method HandlerFunc, name string, outer map[string]any) Status {
	result := map[string]any{}
	outer["result"] = result

	status := iv.Call(c, method, name, result)
	if status.OK() {
		result["status"] = "success"
		return status
	}

	slog.Debug(fmt.Sprintf("%s - rpc error: %s", resultLogPrefix, status))
	result["status"] = "error"
	result["request"] = maskedRequest(c.Params)
	return status
}

// maskedRequest copies params at the top level and masks secret-bearing
// fields. Nested values are aliased, not copied: the request is owned
// exclusively by this call, so the echo cannot race with anything.
func maskedRequest(params map[string]any) map[string]any {
	echo := make(map[string]any, len(params))
	for k, v := range params {
		echo[k] = v
	}
	for _, field := range maskedFields {
		if _, ok := echo[field]; ok {
			echo[field] = maskedValue
		}
	}
	return echo
}

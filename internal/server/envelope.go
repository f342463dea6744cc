package server

import "github.com/morezero/ledger-gateway/pkg/rpc"

// The two transports place the status field differently around the same
// inner result object. HTTP keeps status inside result; the socket-style
// NATS transport lifts status (and type/id) to the outer envelope.

// httpEnvelope shapes the HTTP placement: everything, status included,
// lives inside the top-level result object. Admission failures, which carry
// their error triple directly in outer, are wrapped the same way.
func httpEnvelope(outer map[string]any) map[string]any {
	if result, ok := outer["result"].(map[string]any); ok {
		return map[string]any{"result": result}
	}
	outer["status"] = "error"
	return map[string]any{"result": outer}
}

// socketEnvelope shapes the persistent-socket placement: status, type, and
// the caller's id sit outside result. The inner result object is reused,
// with its status field moved out.
func socketEnvelope(id any, outer map[string]any) map[string]any {
	resp := map[string]any{"type": "response"}
	if id != nil {
		resp["id"] = id
	}

	if result, ok := outer["result"].(map[string]any); ok {
		if status, ok := result["status"]; ok {
			resp["status"] = status
			delete(result, "status")
		}
		resp["result"] = result
		return resp
	}

	// Admission failure: the error triple stays at the top level.
	for k, v := range outer {
		resp[k] = v
	}
	resp["status"] = "error"
	return resp
}

// callerRole maps transport credentials onto an rpc role: the configured
// admin token grants admin, attribution headers grant identified, anything
// else is an ordinary user.
func callerRole(adminToken, configured string, headers rpc.Headers) rpc.Role {
	if configured != "" && adminToken == configured {
		return rpc.RoleAdmin
	}
	if headers.Attributed() {
		return rpc.RoleIdentified
	}
	return rpc.RoleUser
}

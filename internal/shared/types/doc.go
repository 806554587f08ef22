// Package types defines the tool surface shared by providers and callers.
//
//   - Service, Tool, Parameter: what a provider offers
//   - Context: who is calling
//   - Result: what a call produced
//   - ExecuteRequest: one scripted call
//
// Success, Failure and the Get* helpers keep tool implementations short:
//
//	url, err := types.GetString(params, "url", true)
//	if err != nil {
//		return types.Failure(err.Error())
//	}
package types

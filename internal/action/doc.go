// Package action walks scene graphs with per-kind dispatch.
//
// Every action kind is a runtime type derived from "Action" and owns a
// dispatch table. The root table sends groups to their children; the
// GetPrimitiveCountAction, SearchAction and WriteAction tables inherit it and
// add their own methods. A node whose type has no method, directly or
// through an ancestor, is walked through.
package action

// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App owns one type registry. NewApp registers the built-in node classes,
// runs the Lua plugins, then registers and seals the action kinds. Run loads
// a scene, counts its primitives and prints the report.
package app

// Package component is a loader for the WebAssembly Component Model binary
// format: given an in-memory byte buffer it validates the envelope, walks
// the section stream once, and materializes an owned Component tree —
// modules, instances, aliases, types (including resource types), canonical
// functions, imports, exports, and the start function.
//
// This package does not instantiate, link, or execute anything it decodes;
// embedded core modules are handed to an external CoreLoader collaborator
// (see CoreLoader, CoreModuleHandle) and are otherwise treated as opaque
// byte spans. Cross-section index validation and type-equivalence checking
// are likewise out of scope — callers that need a WIT-shaped view of a
// decoded type can use TypeResolver, which is best-effort and never affects
// whether Decode itself succeeds.
//
// Use DecodeAndValidate to parse a component binary with full type
// resolution, or DecodeWithOptions for finer control (a CoreLoader, a
// recursion-depth limit, raw-byte retention versus copying). A failed
// decode releases every handle it had acquired before returning; Unload
// releases the handles held by a successful one.
//
// Type indices in the binary reference into TypeIndexSpace, which is built
// incrementally as sections are parsed. Aliases can create forward
// references that require deferred resolution via typeAlias.
package component

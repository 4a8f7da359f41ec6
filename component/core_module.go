package component

// CoreModuleHandle is the opaque handle returned by an external core-module
// loader. Close releases whatever resources the loader allocated for it.
type CoreModuleHandle interface {
	Close() error
}

// CoreLoader is the external collaborator that turns a raw core Wasm module
// byte slice into an opaque, owned handle. This package never parses core
// Wasm itself; CoreLoader is the seam through which a real core-module
// compiler (for example a wazero runtime) is plugged in.
type CoreLoader interface {
	Load(data []byte) (CoreModuleHandle, error)
}

// CoreModuleEntry is one entry of the core_modules index space: the raw
// byte slice view into the original input, plus the handle obtained from
// CoreLoader if one was configured.
type CoreModuleEntry struct {
	Bytes  []byte
	Handle CoreModuleHandle
}

// Package coreloader implements the external core-module-loader collaborator
// that component.DecodeOptions.CoreLoader plugs into the component binary
// decoder. The component package never parses core WebAssembly itself; this
// package is the seam, backed by a real wazero runtime, that turns the raw
// bytes of a Core Module section entry into the opaque handle spec.md calls
// for ("given a byte slice of a core module, produce an opaque handle, or
// report a parse error; later release it").
package coreloader

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	"github.com/kestrelwasm/component/component"
)

// WazeroLoader compiles (but never instantiates) core module bytes through a
// wazero runtime. Compilation is parse-time validation only: it catches a
// malformed core module without running any code, matching the "black box"
// contract the component loader draws around its core-module collaborator.
type WazeroLoader struct {
	ctx     context.Context
	runtime wazero.Runtime
}

var _ component.CoreLoader = (*WazeroLoader)(nil)

// New creates a WazeroLoader backed by a fresh wazero runtime. The runtime
// lives as long as the loader; call Close to release it once every
// CoreModuleHandle obtained from it has itself been closed (or never was).
func New(ctx context.Context) *WazeroLoader {
	return &WazeroLoader{
		ctx:     ctx,
		runtime: wazero.NewRuntime(ctx),
	}
}

// NewWithConfig creates a WazeroLoader using a caller-supplied runtime
// configuration, for example to cap compiled-module memory or enable
// additional core features.
func NewWithConfig(ctx context.Context, cfg wazero.RuntimeConfig) *WazeroLoader {
	return &WazeroLoader{
		ctx:     ctx,
		runtime: wazero.NewRuntimeWithConfig(ctx, cfg),
	}
}

// Load compiles data as a core WebAssembly module and returns the compiled
// module wrapped as a component.CoreModuleHandle. It satisfies
// component.CoreLoader.
func (l *WazeroLoader) Load(data []byte) (component.CoreModuleHandle, error) {
	compiled, err := l.runtime.CompileModule(l.ctx, data)
	if err != nil {
		return nil, fmt.Errorf("compile core module: %w", err)
	}
	return compiledHandle{ctx: l.ctx, module: compiled}, nil
}

// Close releases the underlying wazero runtime and every module still
// compiled against it. Call it after Unload on every Component this loader
// produced handles for.
func (l *WazeroLoader) Close() error {
	return l.runtime.Close(l.ctx)
}

// compiledHandle adapts a wazero.CompiledModule to component.CoreModuleHandle.
type compiledHandle struct {
	ctx    context.Context
	module wazero.CompiledModule
}

func (h compiledHandle) Close() error {
	return h.module.Close(h.ctx)
}

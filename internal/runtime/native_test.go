// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/tetratelabs/wazero"

	"github.com/invowk/requireplus/pkg/loader"
	"github.com/invowk/requireplus/pkg/vfs"
)

var (
	// demoWasm imports env.notify and exports rp_demo_init and rp_demo_final,
	// both of which call notify once.
	demoWasm = []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		// type section: () -> ()
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
		// import section: env.notify
		0x02, 0x0e, 0x01, 0x03, 'e', 'n', 'v', 0x06, 'n', 'o', 't', 'i', 'f', 'y', 0x00, 0x00,
		// function section: two functions of type 0
		0x03, 0x03, 0x02, 0x00, 0x00,
		// export section
		0x07, 0x20, 0x02,
		0x0c, 'r', 'p', '_', 'd', 'e', 'm', 'o', '_', 'i', 'n', 'i', 't', 0x00, 0x01,
		0x0d, 'r', 'p', '_', 'd', 'e', 'm', 'o', '_', 'f', 'i', 'n', 'a', 'l', 0x00, 0x02,
		// code section: call 0; end
		0x0a, 0x0b, 0x02,
		0x04, 0x00, 0x10, 0x00, 0x0b,
		0x04, 0x00, 0x10, 0x00, 0x0b,
	}

	// emptyWasm is a valid module without entry points.
	emptyWasm = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
)

func notifyHost(counter *int) HostModuleFunc {
	return func(ctx context.Context, r wazero.Runtime) error {
		_, err := r.NewHostModuleBuilder("env").
			NewFunctionBuilder().
			WithFunc(func(context.Context) { *counter++ }).
			Export("notify").
			Instantiate(ctx)
		return err
	}
}

func TestNativeLinker_InitAndFinal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var calls int
	linker, err := NewNativeLinker(ctx, WithHostModule(notifyHost(&calls)))
	if err != nil {
		t.Fatalf("NewNativeLinker() error = %v", err)
	}

	src, bc, nat := DefaultExtensions()
	s := loader.New(
		loader.WithNativeLinker(linker),
		loader.WithExtensions(src, bc, nat),
		loader.WithSearchPath(vfs.NewFS("ext", fstest.MapFS{
			"demo.wasm":  {Data: demoWasm},
			"empty.wasm": {Data: emptyWasm},
			"junk.wasm":  {Data: []byte("not wasm")},
		})),
	)

	for range 2 {
		if _, err := s.Require(ctx, "demo"); err != nil {
			t.Fatalf("Require(demo) error = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("init ran %d times, want 1", calls)
	}
	if got := linker.Linked(); len(got) != 1 || got[0] != "VFS:#<ext>/demo.wasm" {
		t.Errorf("Linked() = %v", got)
	}

	_, err = s.Require(ctx, "empty")
	var le *LinkError
	if !errors.As(err, &le) || !errors.Is(err, ErrLink) {
		t.Fatalf("Require(empty) error = %v, want *LinkError", err)
	}
	if !strings.Contains(le.Reason, "rp_empty_init") {
		t.Errorf("LinkError.Reason = %q", le.Reason)
	}

	if _, err := s.Require(ctx, "junk"); !errors.Is(err, ErrLink) {
		t.Errorf("Require(junk) error = %v, want ErrLink", err)
	}

	if err := linker.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("after Close notify ran %d times, want 2", calls)
	}
}

func TestEntryBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		exts []string
		want string
	}{
		{"demo.wasm", []string{".wasm"}, "demo"},
		{"lib/json-ext.wasm", []string{".wasm"}, "json_ext"},
		{"a/b.c.wasm", []string{".wasm"}, "b_c"},
		{"x.so", []string{".wasm"}, "x"},
		{"plain", nil, "plain"},
		{"ünï.wasm", []string{".wasm"}, "__n__"},
	}
	for _, tt := range tests {
		if got := EntryBase(tt.path, tt.exts); got != tt.want {
			t.Errorf("EntryBase(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSetNativeLogger_IgnoresNil(t *testing.T) {
	// Not parallel: mutates the package logger.
	before := NativeLogger()
	SetNativeLogger(nil)
	if got := NativeLogger(); got != before || got == nil {
		t.Errorf("NativeLogger() after SetNativeLogger(nil) = %v, want %v", got, before)
	}
	linker, err := NewNativeLinker(context.Background())
	if err != nil {
		t.Fatalf("NewNativeLinker() error = %v", err)
	}
	t.Cleanup(func() { _ = linker.Close(context.Background()) })
	if linker.logger == nil {
		t.Error("linker logger is nil")
	}
}

package main

import (
	"fmt"
	"runtime"
)

// OptLevel selects the optimization pipeline run after verification.
type OptLevel int

const (
	OptNone OptLevel = iota
	OptModerate
	// OptAggressive runs whole-program rewrites that are only sound because a
	// compilation unit is a single module.
	OptAggressive
)

// Target selects the data layout, triple and entry-point conventions.
type Target int

const (
	TargetNative Target = iota
	// TargetWASI is the portable/sandboxed target (wasm32-wasi).
	TargetWASI
)

// Profile is the tuple of independent axes governing one compilation's
// codegen behavior. Codegen queries it; it never branches on named build
// configs directly, so new profiles are additive.
type Profile struct {
	Opt       OptLevel
	DebugInfo bool
	Target    Target
}

// ConfigProfile maps a named build config onto a Profile.
//
//	debug        O0, debug info
//	development  moderate opt, debug info
//	shipping     aggressive whole-program opt, no debug info
func ConfigProfile(name string, wasm bool) (Profile, error) {
	target := TargetNative
	if wasm {
		target = TargetWASI
	}
	switch name {
	case "debug":
		return Profile{Opt: OptNone, DebugInfo: true, Target: target}, nil
	case "development":
		return Profile{Opt: OptModerate, DebugInfo: true, Target: target}, nil
	case "shipping":
		return Profile{Opt: OptAggressive, DebugInfo: false, Target: target}, nil
	default:
		return Profile{}, fmt.Errorf("unknown config '%s': expected debug, development, or shipping", name)
	}
}

func (p Profile) String() string {
	opt := map[OptLevel]string{OptNone: "O0", OptModerate: "O2", OptAggressive: "O3+LTO"}[p.Opt]
	dbg := "no debug info"
	if p.DebugInfo {
		dbg = "DWARF"
	}
	tgt := "native"
	if p.Target == TargetWASI {
		tgt = "wasm"
	}
	return opt + " / " + dbg + " / " + tgt
}

func (p Profile) triple() string {
	if p.Target == TargetWASI {
		return "wasm32-unknown-wasi"
	}
	return nativeTriple()
}

func (p Profile) dataLayout() string {
	if p.Target == TargetWASI {
		return "e-m:e-p:32:32-p10:8:8-p20:8:8-i64:64-i128:128-n32:64-S128-ni:1:10:20"
	}
	if runtime.GOOS == "darwin" {
		return "e-m:o-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-n32:64-S128-Fn32"
	}
	return "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:128-n8:16:32:64-S128"
}

func nativeTriple() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	switch runtime.GOOS {
	case "darwin":
		if arch == "aarch64" {
			arch = "arm64"
		}
		return arch + "-apple-macosx"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-linux-gnu"
	}
}

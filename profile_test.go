package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestConfigProfileDebug(t *testing.T) {
	p, err := ConfigProfile("debug", false)
	be.Err(t, err, nil)
	be.Equal(t, p.Opt, OptNone)
	be.True(t, p.DebugInfo)
	be.Equal(t, p.Target, TargetNative)
}

func TestConfigProfileDevelopment(t *testing.T) {
	p, err := ConfigProfile("development", false)
	be.Err(t, err, nil)
	be.Equal(t, p.Opt, OptModerate)
	be.True(t, p.DebugInfo)
}

func TestConfigProfileShipping(t *testing.T) {
	p, err := ConfigProfile("shipping", false)
	be.Err(t, err, nil)
	be.Equal(t, p.Opt, OptAggressive)
	be.True(t, !p.DebugInfo)
}

func TestConfigProfileWasm(t *testing.T) {
	for _, name := range []string{"debug", "development", "shipping"} {
		p, err := ConfigProfile(name, true)
		be.Err(t, err, nil)
		be.Equal(t, p.Target, TargetWASI)
	}
}

func TestConfigProfileUnknown(t *testing.T) {
	_, err := ConfigProfile("release", false)
	be.Err(t, err, "unknown config 'release'")
}

func TestProfileTriple(t *testing.T) {
	be.Equal(t, Profile{Target: TargetWASI}.triple(), "wasm32-unknown-wasi")
	be.Equal(t, Profile{}.triple(), nativeTriple())
}

func TestProfileDataLayoutWASI(t *testing.T) {
	layout := Profile{Target: TargetWASI}.dataLayout()
	be.Equal(t, layout, "e-m:e-p:32:32-p10:8:8-p20:8:8-i64:64-i128:128-n32:64-S128-ni:1:10:20")
}

func TestProfileString(t *testing.T) {
	p, err := ConfigProfile("shipping", true)
	be.Err(t, err, nil)
	be.Equal(t, p.String(), "O3+LTO / no debug info / wasm")

	p, err = ConfigProfile("debug", false)
	be.Err(t, err, nil)
	be.Equal(t, p.String(), "O0 / DWARF / native")
}

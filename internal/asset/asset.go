package asset

import "fmt"

// Kind distinguishes the venue's native asset from named custom assets.
type Kind uint8

const (
	KindNative Kind = iota
	KindCustom
)

// Asset identifies a tradable asset. It is a comparable value type so it can
// serve as a map key; equality is kind+name.
type Asset struct {
	Kind Kind
	Name string
}

// NativeSymbol is the wire name of the venue's native asset.
const NativeSymbol = "XLM"

// Native returns the venue's native asset.
func Native() Asset {
	return Asset{Kind: KindNative}
}

// Custom returns a named custom asset.
func Custom(name string) Asset {
	return Asset{Kind: KindCustom, Name: name}
}

// Parse maps a wire symbol to an Asset. The native symbol maps to the native
// asset; everything else is a custom asset under its own name.
func Parse(symbol string) (Asset, error) {
	if symbol == "" {
		return Asset{}, fmt.Errorf("empty asset symbol")
	}
	if symbol == NativeSymbol {
		return Native(), nil
	}
	return Custom(symbol), nil
}

// Symbol returns the wire name of the asset.
func (a Asset) Symbol() string {
	if a.Kind == KindNative {
		return NativeSymbol
	}
	return a.Name
}

func (a Asset) IsNative() bool {
	return a.Kind == KindNative
}

func (a Asset) String() string {
	return a.Symbol()
}

package asset_test

import (
	"testing"

	"swapvenue/internal/asset"
)

func TestParse(t *testing.T) {
	a, err := asset.Parse("XLM")
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsNative() || a.Symbol() != asset.NativeSymbol {
		t.Errorf("got %+v", a)
	}

	b, err := asset.Parse("USDC-SIM")
	if err != nil {
		t.Fatal(err)
	}
	if b.IsNative() || b.Symbol() != "USDC-SIM" {
		t.Errorf("got %+v", b)
	}

	if _, err := asset.Parse(""); err == nil {
		t.Error("empty symbol should fail")
	}
}

func TestAssetsAreComparable(t *testing.T) {
	if asset.Native() != asset.Native() {
		t.Error("native not equal to itself")
	}
	if asset.Custom("XLM") == asset.Native() {
		t.Error("a custom asset named XLM is not the native asset")
	}
	if asset.Custom("A") == asset.Custom("B") {
		t.Error("distinct customs compared equal")
	}
}

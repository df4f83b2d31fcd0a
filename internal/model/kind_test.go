package model

import (
	"encoding/json"
	"testing"
)

func TestKindMarshalNamed(t *testing.T) {
	data, err := json.Marshal(KindCore)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"Core"` {
		t.Errorf("expected bare string \"Core\", got %s", data)
	}
}

func TestKindMarshalOther(t *testing.T) {
	data, err := json.Marshal(OtherKind("plugin"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"Other":"plugin"}` {
		t.Errorf("expected tagged object, got %s", data)
	}
}

func TestKindRoundTrip(t *testing.T) {
	kinds := []Kind{
		KindCore, KindDataProcessing, KindAPI, KindTesting,
		KindUtilities, KindMonitoring, OtherKind("bindings"), OtherKind(""),
	}
	for _, kind := range kinds {
		data, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("marshal %v failed: %v", kind, err)
		}
		var got Kind
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s failed: %v", data, err)
		}
		if got != kind {
			t.Errorf("round trip changed %v to %v", kind, got)
		}
	}
}

func TestKindUnmarshalUnknown(t *testing.T) {
	var kind Kind
	if err := json.Unmarshal([]byte(`"Nonsense"`), &kind); err == nil {
		t.Error("expected error for unknown kind name")
	}
	if err := json.Unmarshal([]byte(`{"Weird":"x"}`), &kind); err == nil {
		t.Error("expected error for unknown variant object")
	}
}

func TestKindDisplayName(t *testing.T) {
	if got := KindDataProcessing.DisplayName(); got != "Data Processing" {
		t.Errorf("expected spaced display name, got %q", got)
	}
	if got := KindCore.DisplayName(); got != "Core" {
		t.Errorf("expected Core, got %q", got)
	}
	if got := OtherKind("ffi").DisplayName(); got != "ffi" {
		t.Errorf("expected label as display name, got %q", got)
	}
}

func TestKindColor(t *testing.T) {
	if got := KindCore.Color(); got != "#e74c3c" {
		t.Errorf("unexpected core color %q", got)
	}
	if got := OtherKind("x").Color(); got != "#bdc3c7" {
		t.Errorf("unexpected fallback color %q", got)
	}
}

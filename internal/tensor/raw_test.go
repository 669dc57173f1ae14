package tensor

import (
	"testing"
)

// RawTensor Tests

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize = %d, want 24", raw.ByteSize())
	}

	if _, err := NewRaw(Shape{-2}, Float32, CPU); err == nil {
		t.Error("NewRaw with negative dimension should fail")
	}
}

func TestRawTensorEmpty(t *testing.T) {
	raw, err := NewRaw(Shape{3, 0}, Float64, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if n := len(raw.AsFloat64()); n != 0 {
		t.Errorf("empty tensor view has %d elements", n)
	}
}

func TestRawTensorAsInt64(t *testing.T) {
	raw, _ := NewRaw(Shape{3, 2}, Int64, CPU)
	data := raw.AsInt64()

	if len(data) != 6 {
		t.Errorf("AsInt64 length = %d, want 6", len(data))
	}

	// Modify and verify zero-copy
	data[0] = 42
	if raw.AsInt64()[0] != 42 {
		t.Error("AsInt64 should return zero-copy slice")
	}
}

func TestRawTensorWrongDTypePanics(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Int32, CPU)
	defer func() {
		if recover() == nil {
			t.Error("AsFloat32 on int32 tensor should panic")
		}
	}()
	raw.AsFloat32()
}

func TestRawTensorCloneAndRelease(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)
	if !raw.IsUnique() {
		t.Error("New RawTensor should be unique initially")
	}

	clone := raw.Clone()
	if raw.IsUnique() {
		t.Error("After Clone(), IsUnique() should return false")
	}

	clone.AsFloat32()[0] = 3
	if raw.AsFloat32()[0] != 3 {
		t.Error("Clone should share the buffer")
	}

	clone.Release()
	if raw.IsReleased() {
		t.Error("buffer freed while a reference remains")
	}
	raw.Release()
	if !raw.IsReleased() {
		t.Error("buffer should be freed after the last Release")
	}
}

func TestRawTensorCopy(t *testing.T) {
	raw, _ := NewRaw(Shape{3}, Float32, CPU)
	raw.AsFloat32()[1] = 5

	cp := raw.Copy()
	cp.AsFloat32()[1] = 9
	if raw.AsFloat32()[1] != 5 {
		t.Error("Copy should not share the buffer")
	}
	if !raw.IsUnique() {
		t.Error("Copy should not add a reference")
	}
}

func TestParseContext(t *testing.T) {
	tests := []struct {
		in   string
		want Context
	}{
		{"", Context{Device: CPU}},
		{"cpu", Context{Device: CPU}},
		{"cpu(0)", Context{Device: CPU}},
		{"gpu(1)", Context{Device: CUDA, ID: 1}},
		{"cpu_pinned(2)", Context{Device: CPU, ID: 2, Pinned: true}},
	}
	for _, tt := range tests {
		got, err := ParseContext(tt.in)
		if err != nil {
			t.Fatalf("ParseContext(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseContext(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"tpu", "gpu(x)", "cpu(1", "gpu(-1)"} {
		if _, err := ParseContext(bad); err == nil {
			t.Errorf("ParseContext(%q) should fail", bad)
		}
	}

	if s := (Context{Device: CUDA, ID: 3}).String(); s != "gpu(3)" {
		t.Errorf("Context.String() = %q, want gpu(3)", s)
	}
}

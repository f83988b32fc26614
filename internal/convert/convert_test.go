package convert

import (
	"bytes"
	"errors"
	"testing"

	"fileforge/internal/formats"
)

func TestDispatch_AllDeclaredPairs(t *testing.T) {
	c := New(DefaultLimits())
	for _, conv := range formats.All("") {
		for _, out := range conv.Outputs {
			fn, err := c.Dispatch(conv.Input, out)
			if err != nil {
				t.Fatalf("Dispatch(%s, %s) error: %v", conv.Input, out, err)
			}
			if fn == nil {
				t.Fatalf("Dispatch(%s, %s) returned nil Func", conv.Input, out)
			}
		}
	}
}

func TestDispatch_UndeclaredPair(t *testing.T) {
	c := New(DefaultLimits())
	cases := [][2]string{
		{"csv", "webp"},
		{"pdf", "xlsx"},
		{"png", "pdf"},
		{"dwg", "pdf"},
	}
	for _, pair := range cases {
		_, err := c.Dispatch(pair[0], pair[1])
		var uc *formats.UnsupportedConversionError
		if !errors.As(err, &uc) {
			t.Fatalf("Dispatch(%s, %s): expected UnsupportedConversionError, got %v", pair[0], pair[1], err)
		}
	}
}

func TestLimits_DefaultsApplied(t *testing.T) {
	c := New(Limits{})
	if c.limits.MaxImageDimension != 10000 {
		t.Fatalf("expected default image dimension limit, got %d", c.limits.MaxImageDimension)
	}
	if c.limits.MaxPDFPages != 500 {
		t.Fatalf("expected default page limit, got %d", c.limits.MaxPDFPages)
	}
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := failed(cause, "conversion broke")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("conversion broke")) {
		t.Fatalf("expected reason in message, got %q", err.Error())
	}
}

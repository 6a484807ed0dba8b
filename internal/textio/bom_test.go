package textio

import (
	"io"
	"strings"
	"testing"
)

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"with BOM", "\xEF\xBB\xBF{\"dataset\":\"orders\"}", `{"dataset":"orders"}`},
		{"without BOM", `{"dataset":"orders"}`, `{"dataset":"orders"}`},
		{"BOM only", "\xEF\xBB\xBF", ""},
		{"shorter than BOM", "ab", "ab"},
		{"empty", "", ""},
		{"partial BOM kept", "\xEF\xBBx", "\xEF\xBBx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(SkipBOM(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("SkipBOM() = %q, want %q", got, tt.want)
			}
		})
	}
}

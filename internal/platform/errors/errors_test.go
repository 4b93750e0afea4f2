package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodePairingUnreachableTrait, "child trait is unreachable")
	err := WithMetadata(CodePairingUnreachableTrait, "child trait is unreachable", map[string]string{"trait": "X"})

	if !stderrors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeCatalogInvalidWeight, "other")) {
		t.Fatal("expected different codes not to match")
	}
}

func TestErrorMessageIncludesSortedMetadata(t *testing.T) {
	err := WithMetadata(CodeCatalogReservedDelimiter, "reserved delimiter", map[string]string{
		"layer": "Eyes",
		"file":  "a-b.png",
	})
	want := `reserved delimiter (file="a-b.png" layer="Eyes")`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk gone")
	err := Wrap(CodeCatalogLayerMissing, "read layer", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: stderrors.New("boom"), want: ExitFailure},
		{name: "configuration", err: New(CodeCatalogInvalidBlend, "bad blend"), want: ExitConfiguration},
		{name: "wrapped exhausted", err: fmt.Errorf("run: %w", New(CodeUniquenessExhausted, "out")), want: ExitExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

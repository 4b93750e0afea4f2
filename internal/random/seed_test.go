package random

import "testing"

func TestNewSeedIsNonZero(t *testing.T) {
	for i := 0; i < 16; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed returned error: %v", err)
		}
		if seed == 0 {
			t.Fatal("expected non-zero seed")
		}
	}
}

func TestResolve(t *testing.T) {
	seed, generated, err := Resolve(42)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if seed != 42 || generated {
		t.Fatalf("Resolve(42) = %d, %v; want 42, false", seed, generated)
	}

	seed, generated, err = Resolve(0)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if seed == 0 || !generated {
		t.Fatalf("Resolve(0) = %d, %v; want fresh seed", seed, generated)
	}
}

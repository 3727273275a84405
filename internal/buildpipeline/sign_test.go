package buildpipeline

import "testing"

func TestContentHashIsDeterministic(t *testing.T) {
	bundle := []byte("some bundle bytes")
	a, err := ContentHash(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ContentHash(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same bundle to hash identically, got %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("expected a non-empty hash")
	}
}

func TestContentHashDiffersOnDifferentInput(t *testing.T) {
	a, _ := ContentHash([]byte("bundle one"))
	b, _ := ContentHash([]byte("bundle two"))
	if a == b {
		t.Fatal("expected different bundles to hash differently")
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	bundle := []byte("some bundle bytes")
	a, err := Fingerprint(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Fingerprint(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same bundle to fingerprint identically, got %q vs %q", a, b)
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("unexpected error generating a signing key: %v", err)
	}
	bundle := []byte("artifact bytes")
	sig := Sign(priv, bundle)
	if !Verify(pub, bundle, sig) {
		t.Fatal("expected a valid signature to verify")
	}
}

func TestVerifyRejectsTamperedBundle(t *testing.T) {
	pub, priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("unexpected error generating a signing key: %v", err)
	}
	sig := Sign(priv, []byte("original bytes"))
	if Verify(pub, []byte("tampered bytes"), sig) {
		t.Fatal("expected verification to fail for a tampered bundle")
	}
}

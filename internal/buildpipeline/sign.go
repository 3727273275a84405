package buildpipeline

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

// ContentHash returns the blake2b-256 digest of a bundle, used as the
// artifact's content address: two builds from identical source produce an
// identical hash regardless of which machine built them.
func ContentHash(bundle []byte) (string, error) {
	digest := blake2b.Sum256(bundle)
	return hex.EncodeToString(digest[:]), nil
}

// Fingerprint derives a deterministic build commitment point from a
// bundle's content hash: the hash is reduced to an edwards25519 scalar and
// multiplied against the curve's base point, giving a short, fixed-size
// identifier that two different bundles collide on only as often as
// edwards25519 discrete log would allow. This never needs a private key,
// unlike the signing step below, so it is always safe to compute and print.
func Fingerprint(bundle []byte) (string, error) {
	wide := blake2b.Sum512(bundle)
	scalar, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		return "", fmt.Errorf("buildpipeline: deriving fingerprint scalar: %w", err)
	}
	point := edwards25519.NewIdentityPoint().ScalarBaseMult(scalar)
	return hex.EncodeToString(point.Bytes()), nil
}

// GenerateSigningKey produces a fresh Ed25519 keypair for Sign/Verify.
func GenerateSigningKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// Sign signs a bundle's raw bytes, letting a build pipeline attach
// provenance to an artifact before publishing it.
func Sign(priv ed25519.PrivateKey, bundle []byte) []byte {
	return ed25519.Sign(priv, bundle)
}

// Verify reports whether sig is a valid signature over bundle under pub.
func Verify(pub ed25519.PublicKey, bundle, sig []byte) bool {
	return ed25519.Verify(pub, bundle, sig)
}

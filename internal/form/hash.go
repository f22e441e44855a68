package form

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the algorithm to change later.
const (
	DomainConfig   = "formc/config/v1"
	DomainArtifact = "formc/artifact/v1"
	DomainBuild    = "formc/build/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash identifies a configuration by value. Two configurations
// hash equal exactly when their canonical encodings are equal.
func ContentHash(cfg Config) (string, error) {
	canonical, err := cfg.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// BuildKey identifies the compilation of a configuration by one version of
// the compiler, so it can be looked up before anything is rendered.
func BuildKey(configHash, compilerFingerprint string) string {
	return hashWithDomain(DomainBuild, []byte(configHash+"\x00"+compilerFingerprint))
}

// ArtifactHash identifies compiled output bytes.
func ArtifactHash(parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(DomainArtifact))
	h.Write([]byte{0x00})
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))
}

package auth

import (
	"crypto/rand"
	"encoding/hex"

	"sso/internal/domain/service"
	"sso/internal/errors"
	"sso/internal/util"
)

// opaqueTokenService issues random hex secrets and stores their SHA-256 hex digest.
type opaqueTokenService struct{}

// NewOpaqueTokenService is the constructor for opaqueTokenService.
func NewOpaqueTokenService() service.OpaqueTokenService {
	return &opaqueTokenService{}
}

func (s *opaqueTokenService) Generate(size int) (string, string, error) {
	if size <= 0 {
		return "", "", errors.Errorf("invalid secret size %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Wrap(err, "failed to read random bytes")
	}

	raw := hex.EncodeToString(buf)

	return raw, s.Hash(raw), nil
}

func (s *opaqueTokenService) Hash(raw string) string {
	return util.SHA256Hex(raw)
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickchess/internal/model"
)

type ConfigSuite struct {
	suite.Suite
	cfg *Config
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.cfg = &Config{
		IdentityFile: filepath.Join(s.T().TempDir(), "identity"),
	}
}

func (s *ConfigSuite) TestExplicitIdentityAccepted() {
	s.cfg.Identity = "11111111111111111111"
	s.Require().NoError(s.cfg.LoadIdentity())
	s.Equal("11111111111111111111", s.cfg.Identity)

	// Nothing is written when the identity came from flag or env
	_, err := os.Stat(s.cfg.IdentityFile)
	s.True(os.IsNotExist(err))
}

func (s *ConfigSuite) TestExplicitMalformedIdentityRejected() {
	s.cfg.Identity = "not-a-valid-id"
	err := s.cfg.LoadIdentity()
	s.Require().ErrorIs(err, model.ErrInvalidPlayerID)
}

func (s *ConfigSuite) TestMissingFileMintsAndPersists() {
	s.Require().NoError(s.cfg.LoadIdentity())

	s.True(model.IsValidPlayerID(model.PlayerID(s.cfg.Identity)))

	data, err := os.ReadFile(s.cfg.IdentityFile)
	s.Require().NoError(err)
	s.Equal(s.cfg.Identity, string(data))
}

func (s *ConfigSuite) TestStoredIdentityRoundTrips() {
	s.Require().NoError(os.WriteFile(s.cfg.IdentityFile, []byte("22222222222222222222\n"), 0600))

	s.Require().NoError(s.cfg.LoadIdentity())
	s.Equal("22222222222222222222", s.cfg.Identity)
}

func (s *ConfigSuite) TestCorruptStoredIdentityRegenerated() {
	s.Require().NoError(os.WriteFile(s.cfg.IdentityFile, []byte("garbage"), 0600))

	s.Require().NoError(s.cfg.LoadIdentity())
	s.True(model.IsValidPlayerID(model.PlayerID(s.cfg.Identity)))
	s.NotEqual("garbage", s.cfg.Identity)

	data, err := os.ReadFile(s.cfg.IdentityFile)
	s.Require().NoError(err)
	s.Equal(s.cfg.Identity, string(data))
}

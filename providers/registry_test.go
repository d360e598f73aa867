package providers_test

import (
	"testing"

	"github.com/9seconds/geointel/providers"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	ProviderTestSuite
}

func (suite *RegistryTestSuite) TestDefaultOrder() {
	for _, name := range providers.DefaultOrder {
		prov, err := providers.New(name, suite.http, nil)

		suite.Require().NoError(err)
		suite.Equal(name, prov.Name())
	}
}

func (suite *RegistryTestSuite) TestPriority() {
	suite.Equal(providers.NameIPRegistry, providers.DefaultOrder[0])
	suite.Equal(providers.NameGeoJS, providers.DefaultOrder[len(providers.DefaultOrder)-1])
}

func (suite *RegistryTestSuite) TestOptIn() {
	prov, err := providers.New(providers.NameKeyCDN, suite.http, nil)

	suite.NoError(err)
	suite.Equal(providers.NameKeyCDN, prov.Name())

	_, err = providers.New(providers.NameIPStack, suite.http, nil)

	suite.ErrorIs(err, providers.ErrAuthTokenIsRequired)
}

func (suite *RegistryTestSuite) TestUnknown() {
	_, err := providers.New("maxmind", suite.http, nil)

	suite.ErrorIs(err, providers.ErrUnknownProvider)
}

func TestRegistry(t *testing.T) {
	suite.Run(t, &RegistryTestSuite{})
}

package geolib_test

import (
	"testing"

	"github.com/9seconds/geointel/geolib"
	"github.com/stretchr/testify/suite"
)

type CountryCodesTestSuite struct {
	suite.Suite
}

func (suite *CountryCodesTestSuite) TestNormalizeAlpha2Code() {
	testData := map[string]string{
		"ru":  "RU",
		" us": "US",
		"UK":  "GB",
		"FX":  "FR",
		"YU":  "CS",
		"ZZ":  "",
		"EU":  "",
		"AP":  "",
		"RUS": "",
		"":    "",
	}

	for input, expected := range testData {
		suite.Equal(expected, geolib.NormalizeAlpha2Code(input), input)
	}
}

func (suite *CountryCodesTestSuite) TestAlpha3ToAlpha2() {
	suite.Equal("RU", geolib.Alpha3ToAlpha2("RUS"))
	suite.Equal("US", geolib.Alpha3ToAlpha2("usa"))
	suite.Equal("GB", geolib.Alpha3ToAlpha2("GBR"))
	suite.Equal("", geolib.Alpha3ToAlpha2("XYZ"))
}

func (suite *CountryCodesTestSuite) TestLookupCountry() {
	details, ok := geolib.LookupCountry("de")

	suite.True(ok)
	suite.Equal("DE", details.Alpha2)
	suite.Equal("Germany", details.CommonName)
	suite.Equal("EUR", details.Currency)
	suite.Contains(details.Languages, "German")

	_, ok = geolib.LookupCountry("ZZ")

	suite.False(ok)

	_, ok = geolib.LookupCountry("QQ")

	suite.False(ok)
}

func TestCountryCodes(t *testing.T) {
	suite.Run(t, &CountryCodesTestSuite{})
}

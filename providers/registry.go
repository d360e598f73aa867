package providers

import (
	"fmt"

	"github.com/9seconds/geointel/geolib"
)

// New constructs a provider by its name. Parameters are provider
// specific, like api_key or auth_token.
func New(name string, client geolib.HTTPClient, parameters map[string]string) (geolib.Provider, error) {
	if parameters == nil {
		parameters = map[string]string{}
	}

	switch name {
	case NameIPRegistry:
		return NewIPRegistry(client, parameters), nil
	case NameIPAPI:
		return NewIPAPI(client), nil
	case NameIPAPICom:
		return NewIPAPICom(client), nil
	case NameDBIP:
		return NewDBIP(client), nil
	case NameIPInfo:
		return NewIPInfo(client, parameters), nil
	case NameGeoJS:
		return NewGeoJS(client), nil
	case NameKeyCDN:
		return NewKeyCDN(client), nil
	case NameIPStack:
		return NewIPStack(client, parameters)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

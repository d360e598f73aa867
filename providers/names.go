package providers

const (
	// Identifier for ipregistry.co.
	NameIPRegistry = "ipregistry"

	// Identifier for ipapi.co.
	NameIPAPI = "ipapi"

	// Identifier for ip-api.com.
	NameIPAPICom = "ipapicom"

	// Identifier for free API of db-ip.com.
	NameDBIP = "dbip"

	// Identifier for ipinfo.io.
	NameIPInfo = "ipinfo"

	// Identifier for geojs.io.
	NameGeoJS = "geojs"

	// Identifier for tools.keycdn.com.
	NameKeyCDN = "keycdn"

	// Identifier for ipstack.com.
	NameIPStack = "ipstack"
)

// DefaultOrder is a priority order of providers: registry-first, then
// general purpose services, then free ones with sparse data.
var DefaultOrder = []string{
	NameIPRegistry,
	NameIPAPI,
	NameIPAPICom,
	NameDBIP,
	NameIPInfo,
	NameGeoJS,
}

package registry

import "strings"

const (
	// NativeLoaderID is the program id used for the synthetic custom
	// transaction app.
	NativeLoaderID = "NativeLoader1111111111111111111111111111111"

	// DefaultBaseURL hosts the app assets for every network except mainnet.
	DefaultBaseURL = "https://raw.githubusercontent.com/supermean-org/supersafe-apps/main/src/apps"

	// MainnetBaseURL hosts the app assets for mainnet-beta.
	MainnetBaseURL = "https://raw.githubusercontent.com/supermean-org/supersafe-apps/main/src/apps"

	customFolder = "custom"
	customName   = "Custom Transaction"
)

// App is a registry entry with its asset URLs already resolved.
type App struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Network Network `json:"network" yaml:"network"`
	Folder  string  `json:"folder" yaml:"folder"`
	Active  bool    `json:"active" yaml:"active"`
	LogoURI string  `json:"logoUri" yaml:"logoUri"`
	UIURL   string  `json:"uiUrl" yaml:"uiUrl"`
	DefURL  string  `json:"defUrl" yaml:"defUrl"`
}

// IsNative reports whether the app targets the native loader, i.e. the
// custom transaction app that carries no program definition.
func (a App) IsNative() bool {
	return IsNative(a.ID)
}

// IsNative reports whether id is the native loader program id.
func IsNative(id string) bool {
	return id == NativeLoaderID
}

func assetURL(base, folder, file string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Trim(folder, "/") + "/" + file
}

package prefs

import "fmt"

// DefaultRemotePort is the port used when nothing has been stored yet.
const DefaultRemotePort = 6050

const (
	minUserPort = 1025
	maxUserPort = 65535
)

// RemotePreference controls the remote operation listener.
type RemotePreference struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// IsDifferentPort reports whether port differs from the stored one.
func (p RemotePreference) IsDifferentPort(port int) bool {
	return p.Port != port
}

func (p RemotePreference) validate() error {
	if p.Port < minUserPort || p.Port > maxUserPort {
		return fmt.Errorf("remote port %d outside %d-%d", p.Port, minUserPort, maxUserPort)
	}
	return nil
}

// AdvancedPreferences groups the remaining switches of the advanced settings.
type AdvancedPreferences struct {
	UseIEEEAbbreviations     bool `json:"use_ieee_abbreviations"`
	UseCaseKeeperOnSearch    bool `json:"use_case_keeper_on_search"`
	UseUnitFormatterOnSearch bool `json:"use_unit_formatter_on_search"`
}

// Defaults returns the preferences of a fresh installation.
func Defaults() (RemotePreference, AdvancedPreferences) {
	return RemotePreference{Enabled: false, Port: DefaultRemotePort},
		AdvancedPreferences{
			UseIEEEAbbreviations:     false,
			UseCaseKeeperOnSearch:    true,
			UseUnitFormatterOnSearch: true,
		}
}

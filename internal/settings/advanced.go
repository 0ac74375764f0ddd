// Package settings binds the advanced preferences to an editable form.
package settings

import (
	"errors"
	"fmt"
	"strconv"

	"refremote/internal/prefs"
	"refremote/internal/remote"
)

// TabName is the title of the advanced settings page.
const TabName = "Advanced"

// Store is the preference backend the form reads and writes.
type Store interface {
	remote.PreferenceStore
	Advanced() prefs.AdvancedPreferences
	SetAdvanced(prefs.AdvancedPreferences) error
}

// AbbreviationLoader is told when the IEEE abbreviation switch changes.
type AbbreviationLoader interface {
	Update(useIEEE bool)
}

// Values is the editable state of the form, as the user sees it.
type Values struct {
	UseRemoteServer          bool   `json:"use_remote_server"`
	RemoteServerPort         string `json:"remote_server_port"`
	UseIEEEAbbreviations     bool   `json:"use_ieee_abbreviations"`
	UseCaseKeeperOnSearch    bool   `json:"use_case_keeper_on_search"`
	UseUnitFormatterOnSearch bool   `json:"use_unit_formatter_on_search"`
}

// StoreResult summarises a successful Store.
type StoreResult struct {
	Remote                remote.ToggleResult
	AbbreviationsReloaded bool
}

// Form connects Values to the preference store and the remote toggle.
type Form struct {
	store         Store
	toggle        *remote.Toggle
	abbreviations AbbreviationLoader
}

// NewForm wires a form. abbreviations may be nil.
func NewForm(store Store, toggle *remote.Toggle, abbreviations AbbreviationLoader) *Form {
	return &Form{store: store, toggle: toggle, abbreviations: abbreviations}
}

// Load returns the stored preferences as form values.
func (f *Form) Load() Values {
	rp := f.store.Remote()
	ap := f.store.Advanced()
	return Values{
		UseRemoteServer:          rp.Enabled,
		RemoteServerPort:         strconv.Itoa(rp.Port),
		UseIEEEAbbreviations:     ap.UseIEEEAbbreviations,
		UseCaseKeeperOnSearch:    ap.UseCaseKeeperOnSearch,
		UseUnitFormatterOnSearch: ap.UseUnitFormatterOnSearch,
	}
}

// Validate checks the values without side effects.
func (f *Form) Validate(v Values) error {
	_, err := remote.ValidatePort(v.RemoteServerPort)
	return err
}

// Store validates v and persists it. Nothing is written when validation fails.
func (f *Form) Store(v Values) (StoreResult, error) {
	var res StoreResult
	if err := f.Validate(v); err != nil {
		return res, err
	}

	adv := f.store.Advanced()
	ieeeChanged := adv.UseIEEEAbbreviations != v.UseIEEEAbbreviations
	adv.UseIEEEAbbreviations = v.UseIEEEAbbreviations

	remoteRes, remoteErr := f.toggle.Apply(v.UseRemoteServer, v.RemoteServerPort)
	res.Remote = remoteRes
	var invalid *remote.InvalidPortError
	if errors.As(remoteErr, &invalid) {
		return res, remoteErr
	}

	adv.UseCaseKeeperOnSearch = v.UseCaseKeeperOnSearch
	adv.UseUnitFormatterOnSearch = v.UseUnitFormatterOnSearch
	if err := f.store.SetAdvanced(adv); err != nil {
		return res, fmt.Errorf("store advanced preferences: %w", err)
	}
	if ieeeChanged && f.abbreviations != nil {
		f.abbreviations.Update(adv.UseIEEEAbbreviations)
		res.AbbreviationsReloaded = true
	}
	return res, remoteErr
}

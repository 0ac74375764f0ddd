// Package journals resolves journal abbreviations from the built-in lists.
package journals

import (
	"strings"
	"sync"
)

// List names.
const (
	ListDefault = "default"
	ListIEEE    = "ieee"
)

var defaultList = map[string]string{
	"ieee transactions on software engineering":                      "IEEE Trans. Softw. Eng.",
	"ieee transactions on computers":                                 "IEEE Trans. Comput.",
	"ieee transactions on pattern analysis and machine intelligence": "IEEE Trans. Pattern Anal. Mach. Intell.",
	"communications of the acm":                                      "Commun. ACM",
	"journal of the acm":                                             "J. ACM",
	"physical review letters":                                        "Phys. Rev. Lett.",
}

// IEEE LaTeX abbreviations as defined by IEEEabrv.bib.
var ieeeList = map[string]string{
	"ieee transactions on software engineering":                      "IEEE_J_SE",
	"ieee transactions on computers":                                 "IEEE_J_C",
	"ieee transactions on pattern analysis and machine intelligence": "IEEE_J_PAMI",
}

// Loader holds the abbreviation list selected by the user's preferences.
type Loader struct {
	mu     sync.RWMutex
	name   string
	active map[string]string
}

// NewLoader returns a loader for the list picked by useIEEE.
func NewLoader(useIEEE bool) *Loader {
	l := &Loader{}
	l.Update(useIEEE)
	return l
}

// Update switches the active list. IEEE entries take precedence over the
// default list, which still covers journals IEEEabrv does not know.
func (l *Loader) Update(useIEEE bool) {
	active := make(map[string]string, len(defaultList)+len(ieeeList))
	for k, v := range defaultList {
		active[k] = v
	}
	name := ListDefault
	if useIEEE {
		name = ListIEEE
		for k, v := range ieeeList {
			active[k] = v
		}
	}

	l.mu.Lock()
	l.name = name
	l.active = active
	l.mu.Unlock()
}

// ActiveList returns ListDefault or ListIEEE.
func (l *Loader) ActiveList() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

// Abbreviate looks up the abbreviation of a full journal name, ignoring case
// and surrounding whitespace.
func (l *Loader) Abbreviate(name string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	l.mu.RLock()
	defer l.mu.RUnlock()
	abbr, ok := l.active[key]
	return abbr, ok
}

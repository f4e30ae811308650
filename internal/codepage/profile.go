// internal/codepage/profile.go
package codepage

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Profile is a printer code page: the charmap used to encode text and the
// ESC t argument that tells the printer to interpret bytes with it.
type Profile struct {
	Name       string
	SelectByte byte
	HasEuro    bool
	charmap    *charmap.Charmap
}

var (
	CP858       = Profile{Name: "CP858", SelectByte: 19, HasEuro: true, charmap: charmap.CodePage858}
	Windows1252 = Profile{Name: "WINDOWS-1252", SelectByte: 16, HasEuro: true, charmap: charmap.Windows1252}
	ISO885915   = Profile{Name: "ISO-8859-15", SelectByte: 40, HasEuro: true, charmap: charmap.ISO8859_15}
	CP850       = Profile{Name: "CP850", SelectByte: 2, charmap: charmap.CodePage850}

	// ASCII is the pseudo-profile used for transliterated output. PC437
	// is selected since every 7-bit byte means the same there.
	ASCII = Profile{Name: "ASCII", SelectByte: 0}
)

var aliases = map[string]Profile{
	"CP858":        CP858,
	"PC858":        CP858,
	"IBM858":       CP858,
	"WINDOWS-1252": Windows1252,
	"CP1252":       Windows1252,
	"WPC1252":      Windows1252,
	"ISO-8859-15":  ISO885915,
	"ISO8859-15":   ISO885915,
	"LATIN9":       ISO885915,
	"CP850":        CP850,
	"PC850":        CP850,
	"IBM850":       CP850,
	"ASCII":        ASCII,
}

// DefaultProfiles returns the text profiles in the order they are tried.
// Euro-capable pages come first; CP850 is last because it has no €.
func DefaultProfiles() []Profile {
	return []Profile{CP858, Windows1252, ISO885915, CP850}
}

// Lookup finds a profile by name or common alias, case-insensitively
func Lookup(name string) (Profile, error) {
	p, ok := aliases[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown code page profile %q", name)
	}
	return p, nil
}

// LookupAll resolves a list of profile names, preserving order
func LookupAll(names []string) ([]Profile, error) {
	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		p, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (p Profile) String() string {
	return p.Name
}

package export

import (
	"github.com/c360studio/semcode/vocabulary/code"
)

// Profile determines which statements are included in an export.
type Profile string

const (
	// ProfileFull exports every statement.
	ProfileFull Profile = "full"

	// ProfileStructure drops bulky literals (source text) but keeps metrics
	// and names.
	ProfileStructure Profile = "structure"

	// ProfileMinimal keeps types, labels and entity-to-entity relations.
	ProfileMinimal Profile = "minimal"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeLiterals keeps literal-valued statements other than labels.
	IncludeLiterals bool

	// ExcludePredicateNames lists ontology-local predicate names to drop.
	ExcludePredicateNames []string
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileFull: {
		Name:            ProfileFull,
		Description:     "Every statement in the graph",
		IncludeLiterals: true,
	},
	ProfileStructure: {
		Name:                  ProfileStructure,
		Description:           "All statements except embedded source text",
		IncludeLiterals:       true,
		ExcludePredicateNames: []string{code.PropHasSourceText},
	},
	ProfileMinimal: {
		Name:        ProfileMinimal,
		Description: "Types, labels and relations between entities",
	},
}

// GetProfileConfig returns the configuration for a profile. Unknown profiles
// resolve to the full profile.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileFull]
}

// Filter returns the triples the profile admits. The input is not modified.
func (p Profile) Filter(triples []Triple) []Triple {
	cfg := GetProfileConfig(p)
	if cfg.IncludeLiterals && len(cfg.ExcludePredicateNames) == 0 {
		return triples
	}

	out := make([]Triple, 0, len(triples))
	for _, t := range triples {
		if excluded(t.Predicate, cfg.ExcludePredicateNames) {
			continue
		}
		if !cfg.IncludeLiterals && !t.Object.IsIRI() && t.Predicate != code.RDFSLabel {
			continue
		}
		out = append(out, t)
	}
	return out
}

// excluded matches on the local name so that any ontology namespace works.
func excluded(predicate string, names []string) bool {
	for _, n := range names {
		if localName(predicate) == n {
			return true
		}
	}
	return false
}

func localName(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		if iri[i] == '#' || iri[i] == '/' {
			return iri[i+1:]
		}
	}
	return iri
}

// Package kinds registers the built-in portfolio widget kinds.
// Import it for its side effects:
//
//	import _ "github.com/vovakirdan/gridfolio/internal/kinds"
package kinds

import (
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/registry"
)

// Kind IDs
const (
	Profile      = "profile"
	Games        = "games"
	CVExperience = "cv-experience"
	CVEducation  = "cv-education"
	CVSkills     = "cv-skills"
	Projects     = "projects"
	Contact      = "contact"
	Note         = "note"
	Clock        = "clock"
)

func init() {
	registry.Register(registry.Kind{
		ID:              Profile,
		Title:           "Profile",
		MinUnits:        registry.Units{W: 3, H: 3},
		DefaultUnits:    registry.Units{W: 4, H: 4},
		ExpandedUnits:   registry.Units{W: 6, H: 5},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              Games,
		Title:           "Games",
		MinUnits:        registry.Units{W: 4, H: 3},
		DefaultUnits:    registry.Units{W: 5, H: 3},
		ExpandedUnits:   registry.Units{W: 8, H: 5},
		DefaultSettings: core.Settings{"selectedGame": ""},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              CVExperience,
		Title:           "Experience",
		MinUnits:        registry.Units{W: 4, H: 3},
		DefaultUnits:    registry.Units{W: 5, H: 4},
		ExpandedUnits:   registry.Units{W: 8, H: 6},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              CVEducation,
		Title:           "Education",
		MinUnits:        registry.Units{W: 3, H: 2},
		DefaultUnits:    registry.Units{W: 4, H: 3},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              CVSkills,
		Title:           "Skills",
		MinUnits:        registry.Units{W: 3, H: 2},
		DefaultUnits:    registry.Units{W: 3, H: 3},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              Projects,
		Title:           "Projects",
		MinUnits:        registry.Units{W: 4, H: 2},
		DefaultUnits:    registry.Units{W: 4, H: 3},
		ExpandedUnits:   registry.Units{W: 8, H: 4},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              Contact,
		Title:           "Contact",
		MinUnits:        registry.Units{W: 2, H: 2},
		DefaultUnits:    registry.Units{W: 3, H: 2},
		InDefaultLayout: true,
	})
	registry.Register(registry.Kind{
		ID:              Note,
		Title:           "Note",
		MinUnits:        registry.Units{W: 2, H: 2},
		Multiple:        true,
		DefaultSettings: core.Settings{"text": ""},
	})
	registry.Register(registry.Kind{
		ID:              Clock,
		Title:           "Clock",
		MinUnits:        registry.Units{W: 2, H: 1},
		Multiple:        true,
		DefaultSettings: core.Settings{"timezone": "UTC"},
	})
}

package config

import (
	"regexp"
	"strings"
)

// NoneProgram - name of the sentinel program for members without a team
const NoneProgram string = "None"

// Program - static catalog entry for one robotics competition program
type Program struct {
	Name        string
	Description string
	// Role granted alongside the verified role
	RoleID string
	Emoji  string
	// Shape of a valid team ID. Nil means the program has no team IDs.
	TeamPattern  *regexp.Regexp
	TeamExamples []string
	// RobotEvents program IDs used to confirm a team exists. Empty means
	// the team is not checked against the registry.
	RegistryIDs []int
}

// IsSentinel - true for the "no program" entry, which requires a free-text
// explanation and is always routed to manual review
func (p Program) IsSentinel() bool {
	return p.Name == NoneProgram
}

// TeamLabel - label appended to a verified nickname. The two common
// programs use the bare team ID, everything else is prefixed with the
// program name.
func (p Program) TeamLabel(teamID string) string {
	if p.Name == "V5RC" || p.Name == "VURC" {
		return teamID
	}
	return p.Name + " " + teamID
}

// Programs - immutable program catalog, loaded once at process start
var Programs = []Program{
	{
		Name:         "V5RC",
		Description:  "VEX V5 Robotics Competition",
		RoleID:       "197836716726288387",
		Emoji:        "464676956428828682",
		TeamPattern:  regexp.MustCompile(`^\d{1,5}[A-Z]?$`),
		TeamExamples: []string{"1", "12345A"},
		RegistryIDs:  []int{1},
	},
	{
		Name:         "VURC",
		Description:  "VEX U Robotics Competition",
		RoleID:       "305392771324313610",
		Emoji:        "464677474509389831",
		TeamPattern:  regexp.MustCompile(`^[A-Z]{2,5}\d{0,2}$`),
		TeamExamples: []string{"AB", "ABCDE12"},
		RegistryIDs:  []int{4},
	},
	{
		Name:         "VAIRC",
		Description:  "VEX AI Robotics Competition",
		RoleID:       "706299363588177940",
		Emoji:        "811072718274691073",
		TeamPattern:  regexp.MustCompile(`^(?:\d{1,5}[A-Z]?|[A-Z]{2,5}\d{0,2})$`),
		TeamExamples: []string{"1", "12345A", "AB", "ABCDE12"},
		RegistryIDs:  []int{48, 49},
	},
	{
		Name:         "VIQRC",
		Description:  "VEX IQ Robotics Competition",
		RoleID:       "197817210729791489",
		Emoji:        "464677535461146624",
		TeamPattern:  regexp.MustCompile(`^\d{1,5}[A-Z]?$`),
		TeamExamples: []string{"1", "12345A"},
		RegistryIDs:  []int{41},
	},
	{
		Name:         "FRC",
		Description:  "FIRST Robotics Competition",
		RoleID:       "263900951738318849",
		Emoji:        "810644445192126525",
		TeamPattern:  regexp.MustCompile(`^\d{1,4}$`),
		TeamExamples: []string{"1", "1234"},
	},
	{
		Name:         "FTC",
		Description:  "FIRST Tech Challenge",
		RoleID:       "263900951738318849",
		Emoji:        "810644782215987230",
		TeamPattern:  regexp.MustCompile(`^\d{1,5}$`),
		TeamExamples: []string{"1", "12345"},
	},
	{
		Name:   NoneProgram,
		RoleID: "197817210729791489",
		Emoji:  "❓",
	},
}

// ProgramNamed - case-insensitive exact lookup in the program catalog
func ProgramNamed(name string) (Program, bool) {
	for _, p := range Programs {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Program{}, false
}

// ProgramNames - catalog names in declaration order, for validation messages
func ProgramNames() []string {
	names := make([]string, 0, len(Programs))
	for _, p := range Programs {
		names = append(names, p.Name)
	}
	return names
}

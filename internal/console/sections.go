// Package console holds the navigation model of the admin console and the
// pure helpers its renderers share: section names, request filters and badge
// colors.
package console

import "strings"

// Section names a sidebar entry
type Section string

const (
	SectionDashboard   Section = "dashboard"
	SectionPunishments Section = "punishments"
	SectionAppeals     Section = "appeals"
	SectionModLogs     Section = "modlogs"
	SectionUsers       Section = "users"
)

// SectionInfo is what the sidebar shows for a section
type SectionInfo struct {
	Name  Section
	Title string
	Icon  string
}

var sections = []SectionInfo{
	{SectionDashboard, "Dashboard", "speedometer"},
	{SectionPunishments, "Punishments", "hammer"},
	{SectionAppeals, "Appeals", "envelope"},
	{SectionModLogs, "Mod Logs", "journal-text"},
	{SectionUsers, "Users", "people"},
}

// Sections returns the sidebar entries in display order
func Sections() []SectionInfo {
	out := make([]SectionInfo, len(sections))
	copy(out, sections)
	return out
}

// ParseSection maps a name to its section. Unknown names fall back to the
// dashboard and report false.
func ParseSection(name string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	for _, info := range sections {
		if info.Name == s {
			return s, true
		}
	}
	return SectionDashboard, false
}

// Title returns the sidebar title of s
func (s Section) Title() string {
	for _, info := range sections {
		if info.Name == s {
			return info.Title
		}
	}
	return string(s)
}

// Path is the console route that renders s
func (s Section) Path() string {
	return "/ui/" + string(s)
}

func (s Section) String() string { return string(s) }

package folio

import (
	"fmt"
	"slices"
	"strings"
)

// AllFacet is the catch-all technology facet.
const AllFacet = "All"

// TechnologyFacets returns AllFacet followed by every distinct technology, sorted.
func TechnologyFacets(projects []Project) []string {
	seen := make(map[string]struct{})
	var techs []string
	for _, p := range projects {
		for _, tech := range p.Technologies {
			if _, ok := seen[tech]; ok {
				continue
			}
			seen[tech] = struct{}{}
			techs = append(techs, tech)
		}
	}
	slices.Sort(techs)
	return append([]string{AllFacet}, techs...)
}

// FilterProjects keeps the projects that use facet (unless facet is AllFacet
// or empty) and, when term is not empty, whose title, description or any
// technology contains term, ignoring case.
func FilterProjects(projects []Project, facet, term string) []Project {
	needle := strings.ToLower(term)
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if facet != "" && facet != AllFacet && !slices.Contains(p.Technologies, facet) {
			continue
		}
		if needle != "" && !projectMatches(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func projectMatches(p Project, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	return slices.ContainsFunc(p.Technologies, func(tech string) bool {
		return strings.Contains(strings.ToLower(tech), needle)
	})
}

// ContactFilter selects contact messages in the admin inbox.
type ContactFilter string

const (
	FilterAll     ContactFilter = "all"
	FilterNew     ContactFilter = "new"
	FilterRead    ContactFilter = "read"
	FilterReplied ContactFilter = "replied"
)

// ParseContactFilter parses a filter name. The empty string means FilterAll.
func ParseContactFilter(s string) (ContactFilter, error) {
	switch f := ContactFilter(strings.ToLower(s)); f {
	case FilterAll, FilterNew, FilterRead, FilterReplied:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown contact filter: %q", s)
	}
}

// FilterContacts returns the messages matching filter:
// new means unread, read means read and not replied, replied means replied.
func FilterContacts(contacts []Contact, filter ContactFilter) []Contact {
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		var keep bool
		switch filter {
		case FilterNew:
			keep = !c.Read
		case FilterRead:
			keep = c.Read && c.Status != StatusReplied
		case FilterReplied:
			keep = c.Status == StatusReplied
		default:
			keep = true
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

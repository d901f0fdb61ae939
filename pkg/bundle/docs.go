package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maquette-dev/maquette/pkg/manifest"
)

type typeUsage struct {
	count    int
	versions map[string]struct{}
	props    map[string]struct{}
}

// GenerateDocs produces COMPONENTS.md: a markdown summary of every
// component type a manifest uses, with instance counts, pinned
// versions, and the prop keys seen in the document.
func GenerateDocs(m *manifest.Manifest) []byte {
	usage := map[string]*typeUsage{}
	m.Walk(func(node *manifest.ComponentNode) bool {
		u := usage[node.Type]
		if u == nil {
			u = &typeUsage{
				versions: map[string]struct{}{},
				props:    map[string]struct{}{},
			}
			usage[node.Type] = u
		}
		u.count++
		if node.Version != "" {
			u.versions[node.Version] = struct{}{}
		}
		for k := range node.Props {
			u.props[k] = struct{}{}
		}
		return true
	})

	types := make([]string, 0, len(usage))
	for t := range usage {
		types = append(types, t)
	}
	sort.Strings(types)

	var b strings.Builder
	title := m.Name
	if title == "" {
		title = m.ID
	}
	fmt.Fprintf(&b, "# Components: %s\n\n", title)
	fmt.Fprintf(&b, "Manifest `%s`, version %s, tenant `%s`.\n\n", m.ID, m.Version, m.TenantID)

	if len(types) == 0 {
		b.WriteString("No components.\n")
		return []byte(b.String())
	}

	for _, t := range types {
		u := usage[t]
		fmt.Fprintf(&b, "## %s\n\n", t)
		fmt.Fprintf(&b, "- Instances: %d\n", u.count)
		if len(u.versions) > 0 {
			fmt.Fprintf(&b, "- Pinned versions: %s\n", joinSorted(u.versions))
		} else {
			b.WriteString("- Pinned versions: none (resolved to latest)\n")
		}
		if len(u.props) > 0 {
			fmt.Fprintf(&b, "- Props used: %s\n", joinSorted(u.props))
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func joinSorted(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, "`"+k+"`")
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

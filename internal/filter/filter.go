package filter

import (
	"sort"
	"strings"

	"github.com/yourorg/packetdoc/internal/config"
	"github.com/yourorg/packetdoc/pkg/types"
)

// PacketsConfig is an alias of config.PacketsConfig.
type PacketsConfig = config.PacketsConfig

// Group is the ordered set of packet types of one server.
type Group struct {
	Server string
	Types  []*types.Type
}

// Apply selects the packet types of every configured server. A type
// belongs to server S when its namespace is Root.S or lies below it.
// Only class types are packets. Groups keep the configured server order;
// every configured server gets a group, even an empty one.
func Apply(all []*types.Type, cfg PacketsConfig) []Group {
	groups := make([]Group, 0, len(cfg.Servers))
	index := make(map[string]int, len(cfg.Servers))
	for _, s := range cfg.Servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := index[strings.ToLower(s)]; dup {
			continue
		}
		index[strings.ToLower(s)] = len(groups)
		groups = append(groups, Group{Server: s})
	}

	for _, t := range all {
		if t == nil || t.Kind != types.KindClass {
			continue
		}
		server, ok := ServerOf(t.Namespace, cfg.RootNamespace)
		if !ok {
			continue
		}
		idx, ok := index[strings.ToLower(server)]
		if !ok {
			continue
		}
		groups[idx].Types = append(groups[idx].Types, t)
	}

	if cfg.Order != "declaration" {
		for i := range groups {
			SortByName(groups[i].Types)
		}
	}
	return groups
}

// ServerOf returns the namespace segment right below root, so
// "Rhisis.Network.Packets.World.Chat" under "Rhisis.Network.Packets"
// yields "World". The comparison of root is case-insensitive.
func ServerOf(namespace, root string) (string, bool) {
	root = strings.TrimSuffix(strings.TrimSpace(root), ".")
	if root == "" || len(namespace) <= len(root)+1 {
		return "", false
	}
	if !strings.EqualFold(namespace[:len(root)], root) || namespace[len(root)] != '.' {
		return "", false
	}
	rest := namespace[len(root)+1:]
	if i := strings.Index(rest, "."); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}

// SortByName orders types by simple name, then by full name.
func SortByName(ts []*types.Type) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Name != ts[j].Name {
			return ts[i].Name < ts[j].Name
		}
		return ts[i].FullName() < ts[j].FullName()
	})
}

package windspharm

import (
	"sort"
	"sync"
)

// Interface describes one of the labeled-array front ends built into this
// module. Front ends register themselves at init time; which ones are present
// is a build configuration fact (the nc front end, for example, requires
// cgo and libnetcdf).
type Interface struct {
	// Name is the import path element of the front end package.
	Name string
	// Container names the labeled-array convention the front end accepts.
	Container string
	// Description is a one-line summary for discovery endpoints.
	Description string
}

var (
	interfacesMu sync.RWMutex
	interfaces   = make(map[string]Interface)
)

// RegisterInterface records a front end. It is called from the init function
// of each front end package and panics on duplicate registration.
func RegisterInterface(iface Interface) {
	interfacesMu.Lock()
	defer interfacesMu.Unlock()
	if _, dup := interfaces[iface.Name]; dup {
		panic("windspharm: duplicate interface registration: " + iface.Name)
	}
	interfaces[iface.Name] = iface
}

// Interfaces returns the registered front ends sorted by name.
func Interfaces() []Interface {
	interfacesMu.RLock()
	defer interfacesMu.RUnlock()
	out := make([]Interface, 0, len(interfaces))
	for _, iface := range interfaces {
		out = append(out, iface)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

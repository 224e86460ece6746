package windspharm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterInterface(t *testing.T) {
	RegisterInterface(Interface{Name: "testiface", Container: "test"})

	found := false
	for _, iface := range Interfaces() {
		if iface.Name == "testiface" {
			found = true
		}
	}
	require.True(t, found)
}

func TestRegisterInterface_DuplicatePanics(t *testing.T) {
	RegisterInterface(Interface{Name: "dupiface", Container: "test"})
	require.Panics(t, func() {
		RegisterInterface(Interface{Name: "dupiface", Container: "test"})
	})
}

func TestInterfaces_Sorted(t *testing.T) {
	RegisterInterface(Interface{Name: "zzz-iface", Container: "test"})
	RegisterInterface(Interface{Name: "aaa-iface", Container: "test"})

	names := []string{}
	for _, iface := range Interfaces() {
		names = append(names, iface.Name)
	}
	for i := 1; i < len(names); i++ {
		require.LessOrEqual(t, names[i-1], names[i])
	}
}

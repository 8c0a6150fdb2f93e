// Package namegen generates default names for clusters whose manifest omits
// one.
package namegen

import (
	vendor "github.com/anandvarma/namegen"
)

// prefix marks generated names so they are recognizable next to user-chosen
// cluster names on the same account.
const prefix = "prime-"

var gen = vendor.New()

// ClusterName returns a fresh human-readable cluster name. The result is a
// valid manifest name and needs no further sanitizing.
func ClusterName() string {
	return prefix + gen.Get()
}

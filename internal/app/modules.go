package app

import (
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/modules/env_vars"
	"github.com/vk/bootgraph/modules/hash"
	"github.com/vk/bootgraph/modules/print"
	"github.com/vk/bootgraph/modules/strfuncs"
)

// coreModules is the definitive list of native modules compiled into the
// bootgraph binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&print.Module{},
	&strfuncs.Module{},
	&hash.Module{},
}

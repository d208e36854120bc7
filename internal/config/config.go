// Package config loads a vm.Config from file and environment via viper, per
// SPEC_FULL.md §4.12. internal/vm.Config itself stays free of any loading
// concern — this package produces one and hands it over as a plain value.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ma5ter/pvm/internal/vm"
)

// EnvPrefix is the environment-variable prefix viper binds against, e.g.
// PVM_DATA_STACK_SIZE overrides data_stack_size.
const EnvPrefix = "PVM"

// Load reads a vm.Config from the file at path (if non-empty) layered under
// the built-in defaults, then applies any PVM_-prefixed environment
// overrides. An empty path means "defaults plus environment only".
func Load(path string) (vm.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := vm.DefaultConfig()
	v.SetDefault("data_stack_size", defaults.DataStackSize)
	v.SetDefault("call_stack_size", defaults.CallStackSize)
	v.SetDefault("cell_bits", defaults.CellBits)
	v.SetDefault("vm_version", defaults.VMVersion)
	v.SetDefault("builtin_table_size", defaults.BuiltinTableSize)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return vm.Config{}, fmt.Errorf("pvm: reading config %q: %w", path, err)
		}
	}

	cfg := vm.Config{
		DataStackSize:    v.GetInt("data_stack_size"),
		CallStackSize:    v.GetInt("call_stack_size"),
		CellBits:         v.GetInt("cell_bits"),
		VMVersion:        uint8(v.GetUint("vm_version")),
		BuiltinTableSize: v.GetInt("builtin_table_size"),
	}
	if err := cfg.Validate(); err != nil {
		return vm.Config{}, err
	}
	return cfg, nil
}

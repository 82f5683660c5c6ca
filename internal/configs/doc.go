// Package configs loads shroud's configuration.
//
// Values are layered, lowest precedence first:
//
//  1. DefaultConfig (the portable Firefox layout)
//  2. shroud.toml, found from the working directory upwards or given with --config
//  3. SHROUD_* environment variables (SHROUD_KEY_PATH -> key_path)
//  4. Command-line flags the user set explicitly
//
// The TOML file is decoded with BurntSushi/toml and merged with koanf. List
// values in the environment are comma separated:
//
//	SHROUD_FILES=places.sqlite,cookies.sqlite
//
// LoadSources validates the merged result and reports every problem at once.
package configs

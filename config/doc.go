// Package config loads the cardfs server configuration.
//
// Load layers four sources, each overriding the one before:
//
//  1. built-in defaults (see Default)
//  2. YAML files, merged in the order given
//  3. CARDFS_* environment variables
//  4. command-line flags
//
// Environment variable names are the key path upper-cased with dots turned
// into underscores, so storage.mount_root is CARDFS_STORAGE_MOUNT_ROOT and
// list.max_depth is CARDFS_LIST_MAX_DEPTH. Flags use the shorter names in
// the flag map, e.g. --mount-root and --log-format.
//
// The result is checked with go-playground/validator struct tags before it
// is returned. Among other things the mount root must start with "/", the
// volume root must not contain "/", list.depth may not exceed
// list.max_depth, and log.format is text, json or empty. An empty format
// means json when env is prod and text otherwise.
//
// Commands share one loaded Config through WithContext and FromContext.
package config

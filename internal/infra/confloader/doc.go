// Package confloader loads configuration with koanf and watches the
// configuration file for changes with fsnotify.
//
// Sources, lowest priority first:
//
//  1. Values already present in the target struct (defaults)
//  2. A YAML configuration file
//  3. Environment variables
//
// Environment variables carry the prefix (KVMESH_ by default) and use a
// double underscore between levels, so key names may contain single
// underscores: KVMESH_SERVER__REDIS__MAX_FRAME_BYTES sets
// server.redis.max_frame_bytes.
package confloader

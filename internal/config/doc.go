// Package config reads the optional YAML settings file of the command-line
// tool:
//
//	log_level: debug
//	log_format: text
//	plugins:
//	  - plugins/
//	plugin_timeout: 2s
//	count:
//	  text_as_triangles: false
//	  approximate: true
//	  decimation: percentage
//	  decimation_percentage: 0.5
//
// Options given on the command line take precedence over the file.
package config

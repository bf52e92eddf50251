// Package config provides configuration structures and utilities for
// wordharvest. It defines the discovery, quota, filter, and output
// options, and loads the optional .wordharvest YAML file.
package config

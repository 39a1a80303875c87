// Package config provides configuration for tcmlookup.
//
// Values are resolved in this order, later sources winning:
//
//  1. defaults from NewConfig
//  2. the YAML configuration file (.tcmlookup in the current or home
//     directory, or config.yaml in the XDG config directory)
//  3. environment variables, including CHROME_BINARY_PATH and
//     CHROMEDRIVER_PATH as set by container buildpacks
//  4. command-line flags
//
// A .env file in the working directory is loaded into the environment
// first, without overriding variables that are already set.
package config

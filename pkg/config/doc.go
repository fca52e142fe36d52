/*
Package config loads the YAML configuration captured once at partition
startup: local DC id, transactional protocol, commit-log data directory,
and whether to recover from the log on boot. Grounded on the teacher's use
of gopkg.in/yaml.v3 for its own deploy-manifest configuration.
*/
package config

// Package config provides server configuration for the battleship server.
//
// Values are resolved in this order, later sources winning:
//   - Built-in defaults (Default)
//   - An optional YAML file (Load)
//   - Environment variables and command line flags, applied by main
//
// Example file:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	  allowed_origins: ["https://play.example.com"]
//	logging:
//	  level: info
//	  format: json
//	game:
//	  idle_room_timeout: 30m
//	  sweep_interval: 1m
//	ngrok:
//	  enabled: false
package config

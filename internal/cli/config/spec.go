package config

import "time"

// CLIConfig is the configuration for kvmesh-cli.
type CLIConfig struct {
	// DefaultServer is a host:port or a key of Servers.
	DefaultServer string `yaml:"default_server"`
	// DefaultOutput is text, json or yaml.
	DefaultOutput string `yaml:"default_output"`
	// Timeout bounds dialing and each request.
	Timeout time.Duration `yaml:"timeout"`
	// HistoryFile is the REPL history location.
	HistoryFile string `yaml:"history_file"`

	// Servers maps short names to addresses.
	Servers map[string]string `yaml:"servers,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "127.0.0.1:6379",
		DefaultOutput: "text",
		Timeout:       5 * time.Second,
		HistoryFile:   defaultPath("history"),
		Servers:       make(map[string]string),
	}
}

// ResolveServer returns the address for a server name or address.
func (c *CLIConfig) ResolveServer(name string) string {
	if addr, ok := c.Servers[name]; ok {
		return addr
	}
	return name
}

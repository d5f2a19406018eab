/*
Package config provides typed, default-returning access to loosely typed
key/value data.

agentgraph uses it in two places: the free-form payload carried by nodes of
extension kinds (kinds the model does not know about), and the application
settings file read by the CLI and server.

# Accessors

	cfg := config.New(map[string]any{
	    "model":   "sonnet",
	    "retries": 3,
	    "timeout": "45s",
	})

	cfg.String("model", "haiku")             // "sonnet"
	cfg.Int("retries", 1)                    // 3
	cfg.Duration("timeout", 30*time.Second)  // 45s
	cfg.Bool("verbose", false)               // false (missing)

Numbers decoded from JSON arrive as float64, from TOML as int64 and from
YAML as int; Int and Float accept all three. Int rejects floats with a
fractional part.

# Files

FromFile picks the parser by extension (.yaml, .yml, .json, .toml). Nested
tables are reached with Section:

	cfg, err := config.FromFile("agentgraph.toml")
	llm := cfg.Section("llm")
	provider := llm.String("provider", "claude")

# Mutation

Config values are never modified in place. With returns a copy:

	next := cfg.With("model", "opus")
*/
package config

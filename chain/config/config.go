package config

// TestChainConfig represents the chain configuration.
type TestChainConfig struct {
	// CheatCodeConfig indicates the configuration for EVM cheat codes to use.
	CheatCodeConfig CheatCodeConfig `json:"cheatCodes"`

	// RPCEndpoints describes the statically configured RPC endpoint alias table queried by the rpcUrl/rpcUrls
	// cheat codes. Order is preserved: rpcUrls reports these entries first, in declaration order.
	RPCEndpoints []RPCEndpoint `json:"rpcEndpoints,omitempty"`

	// Root describes the base directory used to resolve relative paths for file-reading cheat codes and as the
	// working directory of FFI subprocesses. An empty value means the process working directory.
	Root string `json:"root,omitempty"`
}

// CheatCodeConfig describes any configuration options related to the use of vm extensions (a.k.a. cheat codes).
type CheatCodeConfig struct {
	// CheatCodesEnabled indicates whether cheat code pre-compiles should be enabled in the chain.
	CheatCodesEnabled bool `json:"cheatCodesEnabled"`

	// EnableFFI describes whether the FFI cheat code should be enabled. Enablement allows for arbitrary code
	// execution on the tester's machine.
	EnableFFI bool `json:"enableFFI"`
}

// RPCEndpoint describes a single named RPC endpoint entry in the alias table.
type RPCEndpoint struct {
	// Alias is the name contracts use to refer to this endpoint.
	Alias string `json:"alias"`

	// URL is the endpoint URL the alias resolves to. An empty URL defers resolution to the environment variable
	// fallback at lookup time.
	URL string `json:"url"`
}

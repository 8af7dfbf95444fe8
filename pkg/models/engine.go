package models

// VersionResponse is the engine version triplet.
type VersionResponse struct {
	Version string `json:"version"`
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Patch   int    `json:"patch"`
	Code    int    `json:"code"`
}

// EngineServerConfig describes the engine's HTTP listener.
type EngineServerConfig struct {
	Port        int    `json:"port"`
	BindAddr    string `json:"bindaddr"`
	Concurrency int    `json:"concurrency"`
	SSLEnable   bool   `json:"ssl_enable"`
}

// EngineDatabase describes the engine's storage backend.
type EngineDatabase struct {
	Type string `json:"type"`
}

// EngineState is the runtime snapshot inside EngineStatusResponse.
type EngineState struct {
	IsRunning     bool                   `json:"is_running"`
	Server        EngineServerConfig     `json:"server"`
	Database      EngineDatabase         `json:"database"`
	Configuration map[string]interface{} `json:"configuration"`
}

// EngineStatusResponse is returned by /status.
type EngineStatusResponse struct {
	Engine EngineState `json:"engine"`
}

// LuaScript is one loaded plugin script.
type LuaScript struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// PluginsLua is the Lua plugin runtime inventory.
type PluginsLua struct {
	Scripts     List[LuaScript] `json:"scripts"`
	StateMemory string          `json:"state_memory"`
}

// Plugins groups plugin runtimes.
type Plugins struct {
	Lua PluginsLua `json:"lua"`
}

// PluginsResponse is returned by the plugins listing.
type PluginsResponse struct {
	Plugins Plugins `json:"plugins"`
	Code    int     `json:"code"`
	Status  string  `json:"status"`
}

// EngineConfig is the console's connection setting for the engine.
type EngineConfig struct {
	Host    string `json:"host"`
	Port    string `json:"port"`
	BaseURL string `json:"baseUrl"`
}

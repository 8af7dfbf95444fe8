package models

// YaraRuleString is one string definition of a compiled rule.
type YaraRuleString struct {
	Identifier string `json:"identifier"`
	Length     int    `json:"length"`
	Index      int    `json:"index"`
	String     string `json:"string"`
	Flags      int    `json:"flags"`
}

// YaraRuleDetails is compiled rule metadata. Identity is identifier+namespace.
type YaraRuleDetails struct {
	Identifier string                 `json:"identifier"`
	Namespace  string                 `json:"namespace"`
	NumAtoms   int                    `json:"num_atoms"`
	Meta       map[string]interface{} `json:"meta"`
	Strings    List[YaraRuleString]   `json:"strings"`
	Flags      int                    `json:"flags"`
	Tags       YaraTags               `json:"tags"`
}

// YaraRulesResponse is returned by the rules listing.
type YaraRulesResponse struct {
	Rules List[YaraRuleDetails] `json:"rules"`
	Count int                   `json:"count"`
}

// YaraActionResponse is returned by enable, disable and load.
type YaraActionResponse struct {
	Message string `json:"message"`
}

package dashboard

import (
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"gateconsole/pkg/models"
)

// FilterFamilies matches name or description, case-insensitively.
func FilterFamilies(families []models.Family, query string) []models.Family {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Family, 0, len(families))
	for _, f := range families {
		if q == "" || containsFold(f.Name, q) || containsFold(f.Description, q) {
			out = append(out, f)
		}
	}
	return out
}

// FilterTags matches name or description, case-insensitively.
func FilterTags(tags []models.Tag, query string) []models.Tag {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		if q == "" || containsFold(t.Name, q) || containsFold(t.Description, q) {
			out = append(out, t)
		}
	}
	return out
}

// RecordsForFamily returns the records classified under family id.
func RecordsForFamily(records []models.AnalysisRecord, id int) []models.AnalysisRecord {
	out := make([]models.AnalysisRecord, 0)
	if id == 0 {
		return out
	}
	for _, r := range records {
		if r.FamilyRef() == id {
			out = append(out, r)
		}
	}
	return out
}

// RecordsForTag returns the records carrying tag id.
func RecordsForTag(records []models.AnalysisRecord, id int) []models.AnalysisRecord {
	out := make([]models.AnalysisRecord, 0)
	if id == 0 {
		return out
	}
	for i := range records {
		if records[i].HasTag(id) {
			out = append(out, records[i])
		}
	}
	return out
}

// FilterYaraRules matches identifier or namespace, case-insensitively.
func FilterYaraRules(rules []models.YaraRuleDetails, query string) []models.YaraRuleDetails {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.YaraRuleDetails, 0, len(rules))
	for _, r := range rules {
		if q == "" || containsFold(r.Identifier, q) || containsFold(r.Namespace, q) {
			out = append(out, r)
		}
	}
	return out
}

// CountNamespaces returns the number of distinct rule namespaces.
func CountNamespaces(rules []models.YaraRuleDetails) int {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		seen[r.Namespace] = struct{}{}
	}
	return len(seen)
}

// FindYaraRule looks a rule up by identifier.
func FindYaraRule(rules []models.YaraRuleDetails, identifier string) (*models.YaraRuleDetails, bool) {
	for i := range rules {
		if rules[i].Identifier == identifier {
			return &rules[i], true
		}
	}
	return nil, false
}

// ScriptGroup is the plugin scripts living in one directory.
type ScriptGroup struct {
	Directory string
	Scripts   []models.LuaScript
}

// GroupScripts groups scripts by the directory part of their path. Scripts
// without a directory land in "root".
func GroupScripts(scripts []models.LuaScript) []ScriptGroup {
	byDir := make(map[string][]models.LuaScript)
	for _, s := range scripts {
		dir := "root"
		if i := strings.LastIndex(s.Path, "/"); i > 0 {
			dir = s.Path[:i]
		}
		byDir[dir] = append(byDir[dir], s)
	}
	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	out := make([]ScriptGroup, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, ScriptGroup{Directory: d, Scripts: byDir[d]})
	}
	return out
}

// StateMemory returns the Lua state pointer or the placeholder when unset.
func StateMemory(lua models.PluginsLua) string {
	if lua.StateMemory == "" {
		return "0x0000000"
	}
	return lua.StateMemory
}

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with 1024-based units.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// CompiledRulesFilename names a compiled rules download.
func CompiledRulesFilename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "yaragate_rules_" + ts + ".yarac"
}

// ScriptName falls back to the file name of the script path.
func ScriptName(s models.LuaScript) string {
	if s.Name != "" {
		return s.Name
	}
	return path.Base(s.Path)
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

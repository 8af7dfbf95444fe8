package engine

import (
	"context"
	"io"
	"net/http"

	"gateconsole/pkg/models"
)

// Engine REST paths.
const (
	PathVersion      = "/version"
	PathStatus       = "/status"
	PathRecords      = "/engine/v1/analysis/records"
	PathRecordUpdate = "/engine/v1/analysis/records/update"
	PathRecordDelete = "/engine/v1/analysis/records/delete"
	PathScan         = "/engine/v1/analysis/scan"
	PathRescan       = "/engine/v1/analysis/rescan"
	PathThreats      = "/engine/v1/analysis/scan/threats"
	PathFamilies     = "/engine/v1/analysis/families"
	PathFamilyCreate = "/engine/v1/analysis/families/create"
	PathFamilyUpdate = "/engine/v1/analysis/families/update"
	PathTags         = "/engine/v1/analysis/tags"
	PathTagCreate    = "/engine/v1/analysis/tags/create"
	PathTagUpdate    = "/engine/v1/analysis/tags/update"
	PathPlugins      = "/engine/v1/plugins"
	PathYaraRules    = "/yara/rules"
	PathYaraCompiled = "/yara/compiled/rules"
	PathYaraEnable   = "/yara/enable/rules"
	PathYaraDisable  = "/yara/disable/rules"
	PathYaraLoad     = "/yara/load/rules"
)

type shaRequest struct {
	SHA256 string `json:"sha256"`
}

type recordUpdateRequest struct {
	SHA256 string `json:"sha256"`
	models.RecordUpdate
}

type yaraRuleRequest struct {
	Rule string `json:"rule"`
}

type yaraLoadRequest struct {
	Rule      string `json:"rule"`
	Namespace string `json:"namespace"`
}

// Version fetches the engine version. Used for online detection.
func (c *Client) Version(ctx context.Context) (*models.VersionResponse, error) {
	var out models.VersionResponse
	if err := c.getJSON(ctx, "version", PathVersion, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the engine runtime snapshot.
func (c *Client) Status(ctx context.Context) (*models.EngineStatusResponse, error) {
	var out models.EngineStatusResponse
	if err := c.getJSON(ctx, "status", PathStatus, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Records lists analysis records.
func (c *Client) Records(ctx context.Context) (*models.RecordsResponse, error) {
	var out models.RecordsResponse
	if err := c.getJSON(ctx, "records", PathRecords, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord changes the editable fields of one record.
func (c *Client) UpdateRecord(ctx context.Context, sha256 string, update models.RecordUpdate) (*models.MessageResponse, error) {
	var out models.MessageResponse
	req := recordUpdateRequest{SHA256: sha256, RecordUpdate: update}
	if err := c.postJSON(ctx, "records_update", PathRecordUpdate, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord removes one record.
func (c *Client) DeleteRecord(ctx context.Context, sha256 string) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.postJSON(ctx, "records_delete", PathRecordDelete, shaRequest{SHA256: sha256}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Scan submits a sample as the raw request body and returns its sha256.
func (c *Client) Scan(ctx context.Context, sample io.Reader) (*models.ScanResponse, error) {
	data, err := c.do(ctx, "scan", http.MethodPost, PathScan, sample, "application/octet-stream")
	if err != nil {
		return nil, err
	}
	var out models.ScanResponse
	if err := decode(PathScan, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rescan re-triggers analysis of a known sample.
func (c *Client) Rescan(ctx context.Context, sha256 string) (*models.ScanResponse, error) {
	var out models.ScanResponse
	if err := c.postJSON(ctx, "rescan", PathRescan, shaRequest{SHA256: sha256}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Threats fetches the ClamAV and YARA detections for one sample.
func (c *Client) Threats(ctx context.Context, sha256 string) (*models.ThreatsResponse, error) {
	var out models.ThreatsResponse
	if err := c.postJSON(ctx, "threats", PathThreats, shaRequest{SHA256: sha256}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Families lists malware families.
func (c *Client) Families(ctx context.Context) (*models.FamiliesResponse, error) {
	var out models.FamiliesResponse
	if err := c.getJSON(ctx, "families", PathFamilies, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFamily creates a family.
func (c *Client) CreateFamily(ctx context.Context, name, description string) (*models.MutationResponse, error) {
	return c.mutateLabel(ctx, "families_create", PathFamilyCreate, models.LabelInput{Name: name, Description: description})
}

// UpdateFamily renames or re-describes a family.
func (c *Client) UpdateFamily(ctx context.Context, id int, name, description string) (*models.MutationResponse, error) {
	return c.mutateLabel(ctx, "families_update", PathFamilyUpdate, models.LabelInput{ID: id, Name: name, Description: description})
}

// Tags lists tags.
func (c *Client) Tags(ctx context.Context) (*models.TagsResponse, error) {
	var out models.TagsResponse
	if err := c.getJSON(ctx, "tags", PathTags, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, name, description string) (*models.MutationResponse, error) {
	return c.mutateLabel(ctx, "tags_create", PathTagCreate, models.LabelInput{Name: name, Description: description})
}

// UpdateTag renames or re-describes a tag.
func (c *Client) UpdateTag(ctx context.Context, id int, name, description string) (*models.MutationResponse, error) {
	return c.mutateLabel(ctx, "tags_update", PathTagUpdate, models.LabelInput{ID: id, Name: name, Description: description})
}

func (c *Client) mutateLabel(ctx context.Context, endpoint, path string, in models.LabelInput) (*models.MutationResponse, error) {
	var out models.MutationResponse
	if err := c.postJSON(ctx, endpoint, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Plugins lists the engine's Lua plugin inventory.
func (c *Client) Plugins(ctx context.Context) (*models.PluginsResponse, error) {
	var out models.PluginsResponse
	if err := c.getJSON(ctx, "plugins", PathPlugins, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// YaraRules lists compiled rule metadata.
func (c *Client) YaraRules(ctx context.Context) (*models.YaraRulesResponse, error) {
	var out models.YaraRulesResponse
	if err := c.getJSON(ctx, "yara_rules", PathYaraRules, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompiledYaraRules downloads the compiled rule blob.
func (c *Client) CompiledYaraRules(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "yara_compiled", http.MethodGet, PathYaraCompiled, nil, "")
}

// EnableYaraRule enables a rule by identifier.
func (c *Client) EnableYaraRule(ctx context.Context, rule string) (*models.YaraActionResponse, error) {
	var out models.YaraActionResponse
	if err := c.postJSON(ctx, "yara_enable", PathYaraEnable, yaraRuleRequest{Rule: rule}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DisableYaraRule disables a rule by identifier.
func (c *Client) DisableYaraRule(ctx context.Context, rule string) (*models.YaraActionResponse, error) {
	var out models.YaraActionResponse
	if err := c.postJSON(ctx, "yara_disable", PathYaraDisable, yaraRuleRequest{Rule: rule}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadYaraRule submits rule source for compilation into namespace.
func (c *Client) LoadYaraRule(ctx context.Context, source, namespace string) (*models.YaraActionResponse, error) {
	var out models.YaraActionResponse
	if err := c.postJSON(ctx, "yara_load", PathYaraLoad, yaraLoadRequest{Rule: source, Namespace: namespace}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

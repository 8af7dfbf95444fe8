package models

// Family is an engine-side malware family label.
type Family struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tag is an engine-side free-form label.
type Tag struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FamiliesResponse is returned by the families listing.
type FamiliesResponse struct {
	Families List[Family] `json:"families"`
	Code     int          `json:"code"`
	Status   string       `json:"status"`
}

// TagsResponse is returned by the tags listing.
type TagsResponse struct {
	Tags   List[Tag] `json:"tags"`
	Code   int       `json:"code"`
	Status string    `json:"status"`
}

// LabelInput is the body of family/tag create and update calls.
// ID is zero for creates.
type LabelInput struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MutationResponse is returned by family/tag create and update.
type MutationResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        int    `json:"code"`
	Status      string `json:"status"`
}

// MessageResponse is the generic {"message": ...} engine reply.
type MessageResponse struct {
	Message string `json:"message"`
}

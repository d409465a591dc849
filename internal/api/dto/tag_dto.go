package dto

// TagEntry is one row of the tag registry.
type TagEntry struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

// CreateTagRequest payload.
type CreateTagRequest struct {
	Name string `json:"name" form:"name"`
}

// RenameTagRequest payload.
type RenameTagRequest struct {
	NewName string `json:"new_name" form:"new_name"`
}

// TagMutationResponse reports how many records a rename or delete touched.
type TagMutationResponse struct {
	Name           string `json:"name"`
	UpdatedRecords int    `json:"updated_records"`
}

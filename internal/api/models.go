package api

// Space is a named logical document collection.
type Space struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// SpaceDetail extends Space with counts shown on the detail view.
type SpaceDetail struct {
	Space
	DocumentCount int    `json:"document_count"`
	APIKeyCount   int    `json:"api_key_count"`
	UpdatedAt     string `json:"updated_at"`
}

// SpaceList is the response from listing spaces.
type SpaceList struct {
	Spaces []Space `json:"spaces"`
	Total  int     `json:"total"`
}

// CreateSpaceRequest creates a new space.
type CreateSpaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SpaceRef names a space a document belongs to.
type SpaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Document is an uploaded knowledge-base file.
type Document struct {
	ID         int        `json:"id"`
	Filename   string     `json:"filename"`
	FileType   string     `json:"file_type"`
	FileSize   int64      `json:"file_size"`
	ChunkCount int        `json:"chunk_count"`
	Spaces     []SpaceRef `json:"spaces"`
	CreatedAt  string     `json:"created_at"`
}

// DocumentList is the response from listing documents.
type DocumentList struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

// UploadResult is the per-file response from an upload.
type UploadResult struct {
	ID         int        `json:"id"`
	Filename   string     `json:"filename"`
	ChunkCount int        `json:"chunk_count"`
	Spaces     []SpaceRef `json:"spaces"`
}

// APIKey is a space-scoped credential issued to external consumers.
// Only the prefix is ever visible after creation.
type APIKey struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SpaceID      int    `json:"space_id"`
	SpaceName    string `json:"space_name"`
	KeyPrefix    string `json:"key_prefix"`
	IsActive     bool   `json:"is_active"`
	RequestCount int    `json:"request_count"`
	LastUsedAt   string `json:"last_used_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// APIKeyList is the response from listing API keys.
type APIKeyList struct {
	APIKeys []APIKey `json:"api_keys"`
}

// CreateAPIKeyRequest creates a new API key.
type CreateAPIKeyRequest struct {
	Name    string `json:"name"`
	SpaceID int    `json:"space_id"`
}

// CreatedAPIKey carries the one-time plaintext key returned at creation.
type CreatedAPIKey struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	SpaceID int    `json:"space_id"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ChatRequest runs an ad-hoc query against one space.
type ChatRequest struct {
	Query   string `json:"query"`
	SpaceID int    `json:"space_id"`
	TopK    int    `json:"top_k,omitempty"`
}

// ChatSource is one retrieved chunk backing an answer.
type ChatSource struct {
	DocumentID int     `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// ChatResponse is the answer to a chat query.
type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
}

// Stats is the dashboard overview aggregate.
type Stats struct {
	TotalQueries       int     `json:"total_queries"`
	AvgLatencyMs       float64 `json:"avg_latency_ms"`
	AvgChunksRetrieved float64 `json:"avg_chunks_retrieved"`
	TotalDocuments     int     `json:"total_documents"`
	TotalChunks        int     `json:"total_chunks"`
	TotalSpaces        int     `json:"total_spaces"`
}

// QueryLog is one past query record.
type QueryLog struct {
	ID               int     `json:"id"`
	QueryText        string  `json:"query_text"`
	ResponseText     string  `json:"response_text"`
	ChunksRetrieved  int     `json:"chunks_retrieved"`
	LatencyMs        float64 `json:"latency_ms"`
	ModelUsed        string  `json:"model_used"`
	Source           string  `json:"source"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	Cost             float64 `json:"cost"`
	CreatedAt        string  `json:"created_at"`
}

// QueryLogList is the response from listing query logs.
type QueryLogList struct {
	Logs  []QueryLog `json:"logs"`
	Total int        `json:"total"`
}

// UsageLog is one billed request record.
type UsageLog struct {
	ID               int     `json:"id"`
	QueryText        string  `json:"query_text"`
	ResponseText     string  `json:"response_text"`
	ModelUsed        string  `json:"model_used"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	Cost             float64 `json:"cost"`
	Source           string  `json:"source"`
	CreatedAt        string  `json:"created_at"`
}

// UsageData is the usage aggregate plus one page of logs.
type UsageData struct {
	TotalCost             float64    `json:"total_cost"`
	TotalPromptTokens     int        `json:"total_prompt_tokens"`
	TotalCompletionTokens int        `json:"total_completion_tokens"`
	TotalRequests         int        `json:"total_requests"`
	Logs                  []UsageLog `json:"logs"`
}

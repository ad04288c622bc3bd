package model

// Mapping is the persisted pair binding a short code to a normalized URL.
// Mappings are immutable once created; there is no update operation.
type Mapping struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
}

// Credential is a record in the user store, checked on deletion requests.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

package entities

// Credentials is a Trello API key/token pair
type Credentials struct {
	APIKey string `json:"api_key"`
	Token  string `json:"token"`
}

// IsComplete reports whether both halves are present
func (c Credentials) IsComplete() bool {
	return c.APIKey != "" && c.Token != ""
}

package chatwoot

type ssoResponse struct {
	URL string `json:"url"`
}

package chatwoot

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client fala com a Platform API do Chatwoot para gerar links de SSO.
type Client struct {
	baseURL       string
	platformToken string
	http          *http.Client
}

func NewClient(baseURL, platformToken string) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		platformToken: platformToken,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.platformToken != ""
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GenerateSSOURL pede o link de login do usuário e acrescenta o
// redirect para o dashboard da conta. O separador depende do link
// que o Chatwoot devolver já ter query string ou não.
func (c *Client) GenerateSSOURL(userID, accountID int) (string, error) {
	url := fmt.Sprintf("%s/platform/api/v1/users/%d/login", c.baseURL, userID)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("api_access_token", c.platformToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("erro request chatwoot: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chatwoot respondeu %d - %s", resp.StatusCode, string(body))
	}

	var result ssoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.URL == "" {
		return "", fmt.Errorf("chatwoot não devolveu url de sso")
	}

	separator := "?"
	if strings.Contains(result.URL, "?") {
		separator = "&"
	}

	return fmt.Sprintf("%s%sredirect_url=/app/accounts/%d/dashboard", result.URL, separator, accountID), nil
}

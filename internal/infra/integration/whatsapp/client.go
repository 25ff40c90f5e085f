package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type Config struct {
	BaseURL      string
	AccessToken  string
	PhoneID      string
	TemplateName string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// SendWelcome manda o template de boas-vindas para o lead recém-concluído.
func (c *Client) SendWelcome(ctx context.Context, lead *entity.Lead) error {
	phone := strings.TrimPrefix(lead.WhatsAppE164(), "+")
	if phone == "" {
		log.Printf("⚠️ WhatsApp: lead %s sem telefone, boas-vindas ignoradas", lead.ID)
		return nil
	}

	firstName := lead.Name
	if parts := strings.Fields(lead.Name); len(parts) > 0 {
		firstName = parts[0]
	}

	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  phone,
		TemplateName: c.cfg.TemplateName,
		Parameters:   []string{firstName},
	})
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if c.cfg.AccessToken == "" || c.cfg.PhoneID == "" {
		return fmt.Errorf("whatsapp não configurado")
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                input.PhoneNumber,
		"type":              "template",
		"template": map[string]any{
			"name": input.TemplateName,
			"language": map[string]string{
				"code": "pt_BR",
			},
			"components": []map[string]any{
				{
					"type":       "body",
					"parameters": convertParametersToAPI(input.Parameters),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar mensagem: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result SendMessageResponse
	_ = json.Unmarshal(respBody, &result)

	if result.Error != nil {
		return fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp api error: %d", resp.StatusCode)
	}

	log.Printf("✅ WhatsApp: Mensagem enviada para %s", input.PhoneNumber)
	return nil
}

func convertParametersToAPI(params []string) []map[string]string {
	result := make([]map[string]string, 0, len(params))
	for _, param := range params {
		result = append(result, map[string]string{
			"type": "text",
			"text": param,
		})
	}
	return result
}

package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

type Config struct {
	BaseURL    string // ex: https://dsx.kommo.com/api/v4
	APIToken   string
	PipelineID int
	StatusID   int
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// UpsertContact busca o contato pelo telefone e cria um novo se não existir.
func (c *Client) UpsertContact(ctx context.Context, lead *entity.Lead) (int, error) {
	phone := lead.WhatsAppE164()

	contactID, err := c.findContactByPhone(ctx, phone)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar contato: %w", err)
	}
	if contactID > 0 {
		log.Printf("📱 Kommo: Contato existente encontrado: %d", contactID)
		return contactID, nil
	}

	return c.createContact(ctx, lead, phone)
}

// CreateLead abre o negócio no funil de vendas com uma tag por perfil.
func (c *Client) CreateLead(ctx context.Context, contactID int, lead *entity.Lead) error {
	name := lead.Name
	if lead.ProfileCategory != "" {
		name = fmt.Sprintf("%s - %s", lead.Name, lead.ProfileCategory)
	}

	tags := []tag{{Name: "dsx_registro"}}
	if lead.ProfileCategory != "" {
		tags = append(tags, tag{Name: string(lead.ProfileCategory)})
	}
	if lead.RevenueBracket != "" {
		tags = append(tags, tag{Name: string(lead.RevenueBracket)})
	}

	payload := []leadInput{{
		Name:       name,
		PipelineID: c.cfg.PipelineID,
		StatusID:   c.cfg.StatusID,
		Embedded: leadEmbedded{
			Tags:     tags,
			Contacts: []entityRef{{ID: contactID}},
		},
	}}

	var result embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/leads", payload, &result); err != nil {
		return fmt.Errorf("erro ao criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return fmt.Errorf("lead não criado")
	}

	log.Printf("✅ Kommo: Lead criado #%d para %s", result.Embedded.Leads[0].ID, lead.Name)
	return nil
}

func (c *Client) findContactByPhone(ctx context.Context, phone string) (int, error) {
	var result embeddedResponse
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(phone), nil, &result)
	if err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}
	return 0, nil
}

func (c *Client) createContact(ctx context.Context, lead *entity.Lead, phone string) (int, error) {
	payload := []contactInput{{
		Name: lead.Name,
		CustomFieldsValues: []customField{
			{FieldCode: "PHONE", Values: []fieldValue{{Value: phone, EnumCode: "WORK"}}},
			{FieldCode: "EMAIL", Values: []fieldValue{{Value: lead.Email, EnumCode: "WORK"}}},
		},
	}}

	var result embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/contacts", payload, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado")
	}

	contactID := result.Embedded.Contacts[0].ID
	log.Printf("✅ Kommo: Novo contato criado: %d", contactID)
	return contactID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Busca sem resultado volta 204 sem corpo.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("kommo respondeu %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

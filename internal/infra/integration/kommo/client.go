package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// Status do pipeline "Matriculados" no Kommo.
const EnrolledStatusID = 96648371

var ErrNotConfigured = errors.New("kommo não configurado")

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiToken, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// WithHTTPClient troca o cliente http (testes).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// SyncEnrollment cria o lead de matrícula no Kommo a partir do evento do aluno.
func (c *Client) SyncEnrollment(ctx context.Context, event queue.StudentEvent) error {
	_, err := c.CreateLead(ctx, CreateLeadInput{
		StudentName: event.Name,
		CourseName:  event.Course,
		Email:       event.Email,
		Phone:       event.Phone,
		Price:       event.DealValue,
	})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		c.logger.Warn("kommo: KOMMO_API_TOKEN não configurado")
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	name := input.StudentName
	if input.CourseName != "" {
		name = fmt.Sprintf("%s - %s", input.StudentName, input.CourseName)
	}
	leadData := []map[string]any{
		{
			"name":      name,
			"status_id": EnrolledStatusID,
			"price":     int(input.Price),
			"_embedded": map[string]any{
				"tags":     []map[string]any{{"name": "matricula_confirmada"}},
				"contacts": []map[string]any{{"id": contactID}},
			},
		},
	}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/leads", leadData, &result, http.StatusOK); err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado")
	}

	leadID := result.Embedded.Leads[0].ID
	c.logger.Info("kommo: lead criado",
		zap.Int("lead_id", leadID),
		zap.String("student", input.StudentName),
		zap.String("course", input.CourseName),
	)
	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	for _, q := range []string{input.Phone, input.Email} {
		if q == "" {
			continue
		}
		id, err := c.findContact(ctx, q)
		if err != nil {
			return 0, err
		}
		if id > 0 {
			c.logger.Debug("kommo: contato existente encontrado", zap.Int("contact_id", id))
			return id, nil
		}
	}
	return c.createContact(ctx, input)
}

// findContact devolve 0 quando não há contato. O Kommo responde 204 sem corpo nesse caso.
func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(query), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return 0, nil
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("erro ao buscar contato: %d - %s", resp.StatusCode, string(body))
	}

	var result embeddedIDs
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}
	return 0, nil
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	fields := []map[string]any{}
	if input.Phone != "" {
		fields = append(fields, map[string]any{
			"field_code": "PHONE",
			"values":     []map[string]any{{"value": input.Phone, "enum_code": "WORK"}},
		})
	}
	if input.Email != "" {
		fields = append(fields, map[string]any{
			"field_code": "EMAIL",
			"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
		})
	}
	contactData := []map[string]any{
		{"name": input.StudentName, "custom_fields_values": fields},
	}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/contacts", contactData, &result, http.StatusOK, http.StatusCreated); err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado")
	}

	contactID := result.Embedded.Contacts[0].ID
	c.logger.Info("kommo: novo contato criado", zap.Int("contact_id", contactID))
	return contactID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any, okStatus ...int) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(b))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !statusIn(resp.StatusCode, okStatus) {
		return fmt.Errorf("status %d - %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func statusIn(code int, list []int) bool {
	for _, s := range list {
		if code == s {
			return true
		}
	}
	return false
}

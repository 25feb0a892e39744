package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LilVoxy/sales_program/config"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/utils"
)

// maxResponseSize ограничивает размер читаемого ответа 1С
const maxResponseSize = 64 << 20

// Client обращается к HTTP-сервисам 1С: история продаж, чтение и установка планов
type Client struct {
	cfg      config.ERPConfig
	http     *http.Client
	baseURL  string
	location *time.Location
	logger   *utils.Logger
}

// NewClient создает клиента с таймаутом из конфигурации
func NewClient(cfg config.ERPConfig, logger *utils.Logger) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		baseURL:  buildBaseURL(cfg.Server, cfg.Base),
		location: time.Local,
		logger:   logger,
	}
}

// buildBaseURL собирает адрес вида http://server/base; адрес со схемой используется как есть
func buildBaseURL(server, base string) string {
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	server = strings.TrimRight(server, "/")
	base = strings.Trim(base, "/")
	if base == "" {
		return server
	}
	return server + "/" + base
}

type queryRequest struct {
	APIKey string `json:"api_key"`
	Query  string `json:"query"`
}

// Fetch получает полную историю продаж
func (c *Client) Fetch(ctx context.Context) ([]history.Observation, error) {
	start := time.Now()
	body, err := c.query(ctx, salesDataQuery)
	if err != nil {
		return nil, err
	}

	observations, err := parseSales(body, c.location)
	if err != nil {
		c.logger.Error("Ошибка разбора истории продаж: %v", err)
		return nil, err
	}

	c.logger.Debug("Получено %d строк истории за %v", len(observations), time.Since(start))
	return observations, nil
}

// query выполняет запрос на языке 1С через маршрут запросов
func (c *Client) query(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(queryRequest{APIKey: c.cfg.APIKey, Query: text})
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования запроса: %w", err)
	}

	resp, err := c.post(ctx, c.cfg.QueryRoute, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classify(fmt.Errorf("ошибка чтения ответа 1С: %w", err))
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode, truncate(body))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: http %d: %s", ErrMalformed, resp.StatusCode, truncate(body))
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, route string, payload []byte) (*http.Response, error) {
	endpoint := c.baseURL + route
	c.logger.Debug("POST %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса к 1С: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "text/plain")
	if c.cfg.User != "" {
		req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Ошибка обращения к 1С: %v", err)
		return nil, classify(err)
	}
	return resp, nil
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

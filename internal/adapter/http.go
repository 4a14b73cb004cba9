package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/utils"
	"github.com/hostlog/hostlog/models"
	"github.com/go-resty/resty/v2"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	hashKey string
	token   string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress, configures the underlying HTTP client with the
// resolved base URL and request timeout, and initialises the shared HMAC
// hasher pool used for transport integrity hashes.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed
// as a valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	return &httpServerAdapter{client: client, hashKey: appCfg.HashKey, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpServerAdapter) Token() string {
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the derived credentials to
// POST /api/auth/register. On success the bearer token is extracted from
// the Authorization response header and stored via SetToken. Returns an
// error if the request fails, the server returns a non-2xx status, or the
// token cannot be parsed.
func (h *httpServerAdapter) Register(ctx context.Context, req models.AuthRequest) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/auth/register")
	if err != nil {
		return models.Token{}, fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	return h.tokenFromResponse(resp)
}

// RequestSalt implements [ServerAdapter]. It POSTs the login to
// POST /api/auth/params and returns the account's encryption salt. The
// salt is required to derive the KEK before the auth hash can be computed
// for Login. Returns an error if the request or response mapping fails.
func (h *httpServerAdapter) RequestSalt(ctx context.Context, login string) ([]byte, error) {
	var params models.AuthParams

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.AuthRequest{Login: login}).
		SetResult(&params).
		Post("/api/auth/params")

	if err != nil {
		return nil, fmt.Errorf("request salt request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return params.EncryptionSalt, nil
}

// Login implements [ServerAdapter]. It POSTs the pre-computed auth hash to
// POST /api/auth/login. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken. Returns an error
// if the request fails, the server returns a non-2xx status, or the token
// cannot be parsed.
func (h *httpServerAdapter) Login(ctx context.Context, req models.AuthRequest) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/auth/login")
	if err != nil {
		return models.Token{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	return h.tokenFromResponse(resp)
}

// Status implements [ServerAdapter]. It GETs /api/store/status and decodes
// the flattened status entries back into a [models.RecordStatus]. Requires
// a valid bearer token.
func (h *httpServerAdapter) Status(ctx context.Context) (models.RecordStatus, error) {
	resp, err := h.authedRequest(ctx).Get("/api/store/status")
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var sr models.StatusResponse
	if err = json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	return sr.ToRecordStatus(), nil
}

// NextRecords implements [ServerAdapter]. It GETs /api/store/records with
// the stream coordinates as query parameters and decodes the returned
// page. Requires a valid bearer token.
func (h *httpServerAdapter) NextRecords(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParams(map[string]string{
			"host":  host.String(),
			"tag":   string(tag),
			"start": strconv.FormatUint(start, 10),
			"count": strconv.Itoa(count),
		}).
		Get("/api/store/records")
	if err != nil {
		return nil, fmt.Errorf("next records request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var page models.RecordsPage
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("decode records page: %w", err)
	}

	return page.Records, nil
}

// AddRecords implements [ServerAdapter]. It POSTs the batch to
// POST /api/store/records as one atomic call; the server deduplicates by
// record id, so retrying after a transport failure is safe. Requires a
// valid bearer token.
func (h *httpServerAdapter) AddRecords(ctx context.Context, records []models.Record) error {
	batch := models.PushBatch{Records: records}
	if h.hashKey != "" {
		batch.Hash = computeTransportHash(records)
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(batch).
		Post("/api/store/records")
	if err != nil {
		return fmt.Errorf("add records request: %w", err)
	}

	return mapHTTPError(resp)
}

// WipeStore implements [ServerAdapter]. It sends DELETE /api/store,
// removing every record and cache entry the server holds for the
// authenticated user. Requires a valid bearer token.
func (h *httpServerAdapter) WipeStore(ctx context.Context) error {
	resp, err := h.authedRequest(ctx).Delete("/api/store")
	if err != nil {
		return fmt.Errorf("wipe store request: %w", err)
	}

	return mapHTTPError(resp)
}

// ServerVersion implements [ServerAdapter]. It GETs the public
// /api/version endpoint and returns the raw version string.
func (h *httpServerAdapter) ServerVersion(ctx context.Context) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("server version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(string(resp.Body())), nil
}

func computeTransportHash(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	return hex.EncodeToString(utils.Hash(payload))
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// tokenFromResponse extracts the bearer token from the Authorization
// response header, stores it on the adapter, and returns it with the user
// id parsed from the JWT subject claim.
func (h *httpServerAdapter) tokenFromResponse(resp *resty.Response) (models.Token, error) {
	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("parse bearer token: %w", err)
	}

	userID, err := utils.ParseUserIDFromJWT(token)
	if err != nil {
		return models.Token{}, fmt.Errorf("parse user id from token: %w", err)
	}

	h.SetToken(token)
	return models.Token{SignedString: token, UserID: userID}, nil
}

package temelio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var (
	// ErrConnectivity means we never got an HTTP response out of Temelio.
	ErrConnectivity = errors.New("unable to reach temelio")
	// ErrContentType means the response body wasn't JSON when we needed it.
	ErrContentType = errors.New("temelio response is not application/json")
)

// UpstreamError is a non-2xx answer from Temelio, kept verbatim so a failed
// row's report shows exactly what the API said.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("temelio returned %d: %s", e.StatusCode, e.Body)
}

const (
	defaultRetries    = 3
	defaultRetryDelay = 5 * time.Second
	requestTimeout    = 30 * time.Second

	// searchPageSize pulls the whole tenant in one page; the production
	// exports are a few hundred rows.
	searchPageSize = 10000
)

// Client is the HTTP client for the Temelio API. The zero value is not
// usable; build one with NewClient.
type Client struct {
	Config     Config
	HTTP       *http.Client
	Logger     *logrus.Logger
	Retries    int
	RetryDelay time.Duration
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = log
	}
	return &Client{
		Config:     cfg,
		HTTP:       &http.Client{Timeout: requestTimeout},
		Logger:     logger,
		Retries:    defaultRetries,
		RetryDelay: defaultRetryDelay,
	}
}

// post sends one JSON request and returns the status code and raw body.
// A transport-level failure maps to ErrConnectivity.
func (c *Client) post(url string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Config.BearerToken)

	res, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.WithFields(logrus.Fields{
			"url":   url,
			"error": err.Error(),
		}).Error("error in establishing connection to temelio")
		return 0, nil, ErrConnectivity
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		c.Logger.WithFields(logrus.Fields{
			"url":   url,
			"error": err.Error(),
		}).Error("error reading temelio response")
		return res.StatusCode, nil, ErrConnectivity
	}
	return res.StatusCode, responseBody, nil
}

// postJSON sends a request and decodes the JSON response into out. Only a
// 200 with a JSON content type is acceptable.
func (c *Client) postJSON(url string, payload, out any) error {
	status, body, err := c.post(url, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		c.Logger.WithFields(logrus.Fields{
			"url":    url,
			"status": status,
			"body":   string(body),
		}).Error("failed request to temelio")
		return &UpstreamError{StatusCode: status, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		if !strings.Contains(http.DetectContentType(body), "text") {
			return ErrContentType
		}
		return fmt.Errorf("decode temelio response: %w", err)
	}
	return nil
}

// postWithRetry retries transient failures the way the production runs did:
// a fixed delay between attempts, surfacing the last error.
func (c *Client) postWithRetry(url string, payload any, wantStatus int) error {
	retries := c.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		status, body, err := c.post(url, payload)
		if err == nil && status == wantStatus {
			return nil
		}
		if err == nil {
			err = &UpstreamError{StatusCode: status, Body: string(body)}
		}
		lastErr = err
		c.Logger.WithFields(logrus.Fields{
			"url":     url,
			"attempt": attempt,
			"error":   err.Error(),
		}).Info("temelio request attempt failed")
		if attempt < retries {
			time.Sleep(c.RetryDelay)
		}
	}
	return lastErr
}

// CreateNonprofit creates a grantee organization and returns its id.
func (c *Client) CreateNonprofit(req NonprofitRequest) (string, error) {
	var created NonprofitCreated
	if err := c.postJSON(c.Config.CreateGranteeURL(), req, &created); err != nil {
		return "", err
	}
	c.Logger.WithFields(logrus.Fields{
		"legal_name":   req.LegalName,
		"nonprofit_id": created.ID,
	}).Info("nonprofit created")
	return created.ID, nil
}

// UpdateNonprofit patches a grantee profile. Success is a 204.
func (c *Client) UpdateNonprofit(nonprofitID string, update NonprofitUpdate) error {
	return c.postWithRetry(c.Config.UpdateGranteeURL(nonprofitID), update, http.StatusNoContent)
}

// FetchNonprofits pulls every contact in the foundation.
func (c *Client) FetchNonprofits() ([]NonprofitRecord, error) {
	var res ContactsResponse
	if err := c.postJSON(c.Config.GetContactsURL(), SearchRequest{PageSize: searchPageSize}, &res); err != nil {
		return nil, err
	}
	return res.SearchResponse.Responses, nil
}

// FetchGrants pulls every grant in the foundation.
func (c *Client) FetchGrants() ([]GrantRecord, error) {
	var res GrantsResponse
	if err := c.postJSON(c.Config.GetGrantsURL(), SearchRequest{PageSize: searchPageSize}, &res); err != nil {
		return nil, err
	}
	return res.Responses, nil
}

// CreateGrant posts a historical grant proposal and returns the created
// grant as echoed back by the API.
func (c *Client) CreateGrant(proposal GrantProposal) (GrantCreated, error) {
	var created GrantCreated
	if err := c.postJSON(c.Config.CreateGrantURL(), proposal, &created); err != nil {
		return GrantCreated{}, err
	}
	return created, nil
}

// UpdateGrantStage moves a grant to a new stage, with retry.
func (c *Client) UpdateGrantStage(update GrantStageUpdate) error {
	return c.postWithRetry(c.Config.UpdateGrantURL(), update, http.StatusOK)
}
